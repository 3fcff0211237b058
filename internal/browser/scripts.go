package browser

const inspectScript = `els => els.map(el => {
	const cs = window.getComputedStyle(el);
	const rect = el.getBoundingClientRect();
	return {
		display: cs.display,
		visibility: cs.visibility,
		width: rect.width,
		height: rect.height,
		disabled: !!el.disabled || el.getAttribute('aria-disabled') === 'true',
	};
})`

const textsScript = `els => els
	.filter(el => {
		const cs = window.getComputedStyle(el);
		return cs.display !== 'none' && cs.visibility !== 'hidden' && el.getBoundingClientRect().height > 0;
	})
	.map(el => (el.innerText || el.textContent || '').trim())`

const visibleTextScript = `() => document.body ? document.body.innerText : ''`

// submit откладывается через setTimeout, иначе Evaluate падает на уничтоженном контексте.
const formScript = `({action, method, fields}) => {
	const form = document.createElement('form');
	form.method = method;
	form.action = action;
	for (const [name, value] of Object.entries(fields || {})) {
		const input = document.createElement('input');
		input.type = 'hidden';
		input.name = name;
		input.value = value;
		form.appendChild(input);
	}
	(document.body || document.documentElement).appendChild(form);
	setTimeout(() => HTMLFormElement.prototype.submit.call(form), 0);
	return true;
}`

const fetchScript = `async ({url, method, form, json}) => {
	const opts = {method, credentials: 'include', redirect: 'follow', headers: {}};
	if (json !== null && json !== undefined) {
		opts.headers['Content-Type'] = 'application/json';
		opts.body = JSON.stringify(json);
	} else if (form) {
		opts.headers['Content-Type'] = 'application/x-www-form-urlencoded';
		opts.body = new URLSearchParams(form).toString();
	}
	const r = await fetch(url, opts);
	const body = await r.text();
	const headers = {};
	r.headers.forEach((v, k) => { headers[k] = v; });
	return {url: r.url, status: r.status, redirected: r.redirected, headers, body};
}`
