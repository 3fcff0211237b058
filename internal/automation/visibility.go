package automation

import "acsWorker/internal/browser"

// Visible - элемент отрисован и с ним можно взаимодействовать.
// requireEnabled дополнительно отбрасывает disabled (для кнопок отправки).
func Visible(st browser.ElementState, requireEnabled bool) bool {
	if st.Display == "none" {
		return false
	}
	if st.Visibility == "hidden" || st.Visibility == "collapse" {
		return false
	}
	if st.Height <= 0 {
		return false
	}
	if requireEnabled && st.Disabled {
		return false
	}
	return true
}
