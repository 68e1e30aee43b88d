package chrome

// Injected discovery scripts. Each is an IIFE returning a JSON array
// shaped exactly like the corresponding Go record. Every call re-scans
// the live document; nothing is cached on either side.

// visibleJS mirrors a WebDriver-style displayed check: a rendered box
// with non-zero size that is not hidden via CSS.
const visibleJS = `
function visible(el) {
	const r = el.getBoundingClientRect();
	if (r.width <= 0 || r.height <= 0) return false;
	const s = window.getComputedStyle(el);
	return s.display !== 'none' && s.visibility !== 'hidden';
}`

const linksJS = `(() => {
	` + visibleJS + `
	const out = [];
	const anchors = Array.from(document.querySelectorAll('a')).slice(0, 100);
	anchors.forEach((a, i) => {
		if (!a.href) return;
		out.push({
			index: i,
			href: a.href,
			text: (a.innerText || '').trim(),
			visible: visible(a),
		});
	});
	return out;
})()`

const formsJS = `(() => {
	` + visibleJS + `
	const out = [];
	for (const el of document.querySelectorAll('input')) {
		out.push({
			type: 'input',
			index: out.length,
			input_type: el.type || 'text',
			name: el.name || '',
			id: el.id || '',
			placeholder: el.placeholder || '',
			value: el.value || '',
			visible: visible(el),
		});
	}
	for (const el of document.querySelectorAll('textarea')) {
		out.push({
			type: 'textarea',
			index: out.length,
			name: el.name || '',
			id: el.id || '',
			placeholder: el.placeholder || '',
			value: el.value || '',
			visible: visible(el),
		});
	}
	for (const el of document.querySelectorAll('select')) {
		out.push({
			type: 'select',
			index: out.length,
			name: el.name || '',
			id: el.id || '',
			options: Array.from(el.options).map(o => o.text),
			visible: visible(el),
		});
	}
	return out;
})()`

const buttonsJS = `(() => {
	` + visibleJS + `
	const out = [];
	const els = [
		...document.querySelectorAll('button'),
		...document.querySelectorAll('input[type="submit"]'),
	];
	els.forEach((el, i) => {
		const label = el.tagName === 'INPUT' ? (el.value || '') : (el.innerText || '');
		out.push({
			index: i,
			text: label.trim(),
			type: el.type || '',
			id: el.id || '',
			name: el.name || '',
			visible: visible(el),
		});
	});
	return out;
})()`
