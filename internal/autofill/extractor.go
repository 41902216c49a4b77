package autofill

// ExtractorVersion identifies the in-browser extractor payload. Bump it when
// the scoring rules or the emitted descriptor shape change.
const ExtractorVersion = "2"

// ExtractorJS is the script evaluated inside each frame's context. It lists
// fillable controls, collects and scores candidate prompt texts, parses
// length constraints, and returns one descriptor object per control. It also
// stamps each element with a data-af-field attribute so the executor can
// re-find it by selector later.
//
// Takes (cap, frameUrl, frameName) as arguments.
const ExtractorJS = `
(cap, frameUrl, frameName) => {
	const INTERROGATIVES = /^(why|how|what|when|where|which|who|describe|explain|tell|share|list|provide|walk)\b/i;
	const INTENT_TERMS = /(role|position|motivat|experienc|cover letter|interest|passion|why us|about yourself)/i;
	const LEGAL_TERMS = /(privacy policy|terms of service|terms and conditions|consent to|gdpr|personal data will|by submitting|acknowledg)/i;
	const ESSAY_TERMS = /(describe|explain|tell us|why do you|in your own words|cover letter|essay|elaborate)/i;

	const controls = [];
	const seen = new Set();
	const selector = 'input, textarea, select, [contenteditable="true"], [role="textbox"]';

	const visible = (el) => {
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0) return false;
		const style = getComputedStyle(el);
		return style.display !== 'none' && style.visibility !== 'hidden';
	};

	const cleanText = (s) => (s || '').replace(/\s+/g, ' ').trim();

	const resolveIds = (idList) => {
		if (!idList) return '';
		return idList.split(/\s+/)
			.map(id => cleanText(document.getElementById(id)?.innerText))
			.filter(Boolean)
			.join(' ');
	};

	const scoreCandidate = (text, source) => {
		let score = 0;
		if (text.includes('?')) score += 6;
		if (INTERROGATIVES.test(text)) score += 4;
		if (INTENT_TERMS.test(text)) score += 2;
		if (text.length >= 20 && text.length <= 220) score += 3;
		if (source === 'label' || source === 'aria') score += 5;
		else if (source === 'describedby') score += 3;
		if (text.length > 350) score -= 4;
		if (LEGAL_TERMS.test(text)) score -= 6;
		const lower = text.toLowerCase();
		if (lower === 'optional' || lower === 'required') score -= 5;
		return score;
	};

	const parseConstraints = (text) => {
		const c = {};
		let m = text.match(/(?:max(?:imum)?|up to|no more than|limit(?:ed)? to)\s*(?:of\s*)?(\d{1,6})\s*(words?|characters?|chars?)/i);
		if (m) {
			const n = parseInt(m[1], 10);
			if (/word/i.test(m[2])) c.max_words = n; else c.max_chars = n;
		}
		m = text.match(/(?:min(?:imum)?|at least)\s*(?:of\s*)?(\d{1,6})\s*(words?|characters?|chars?)/i);
		if (m) {
			const n = parseInt(m[1], 10);
			if (/word/i.test(m[2])) c.min_words = n; else c.min_chars = n;
		}
		return c;
	};

	const labelFor = (el) => {
		if (el.labels && el.labels.length > 0) {
			return cleanText(el.labels[0].innerText);
		}
		if (el.id) {
			const lab = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (lab) return cleanText(lab.innerText);
		}
		const wrapping = el.closest('label');
		return wrapping ? cleanText(wrapping.innerText) : '';
	};

	const containerPrompts = (el) => {
		const prompts = [];
		const fieldset = el.closest('fieldset');
		const legend = fieldset?.querySelector('legend');
		if (legend) prompts.push(cleanText(legend.innerText));

		// Walk up a bounded ancestor chain looking at preceding siblings.
		let node = el;
		for (let depth = 0; depth < 3 && node.parentElement; depth++) {
			node = node.parentElement;
			let sib = node.previousElementSibling;
			let hops = 0;
			while (sib && hops < 4) {
				if (/^(H1|H2|H3|H4|H5|H6|P|LEGEND|DIV|SPAN)$/.test(sib.tagName)) {
					const t = cleanText(sib.innerText);
					if (t && t.length <= 400) prompts.push(t);
				}
				sib = sib.previousElementSibling;
				hops++;
			}
			if (prompts.length >= 4) break;
		}
		return prompts.slice(0, 6);
	};

	document.querySelectorAll(selector).forEach((el, idx) => {
		if (controls.length >= cap) return;

		const tag = el.tagName.toLowerCase();
		if (tag === 'input') {
			const t = (el.type || 'text').toLowerCase();
			if (['hidden', 'submit', 'button', 'image', 'reset'].includes(t)) return;
		}
		if (!visible(el)) return;
		if (seen.has(el)) return;
		seen.add(el);

		let controlType;
		if (tag === 'select') controlType = 'select';
		else if (tag === 'textarea') controlType = 'textarea';
		else if (tag === 'input') {
			const t = (el.type || 'text').toLowerCase();
			controlType = (t === 'checkbox' || t === 'radio' || t === 'file') ? t : 'text';
		} else controlType = 'richtext';

		const fieldId = 'af-' + controls.length;
		el.setAttribute('data-af-field', fieldId);

		const label = labelFor(el);
		const ariaName = cleanText(el.getAttribute('aria-label')) || cleanText(resolveIds(el.getAttribute('aria-labelledby')));
		const placeholder = cleanText(el.placeholder);
		const describedBy = cleanText(resolveIds(el.getAttribute('aria-describedby')));
		const container = containerPrompts(el);

		const candidates = [];
		const push = (source, text) => {
			text = cleanText(text);
			if (!text) return;
			candidates.push({ source: source, text: text, score: scoreCandidate(text, source) });
		};
		push('label', label);
		push('aria', ariaName);
		push('placeholder', placeholder);
		push('describedby', describedBy);
		container.forEach(t => push('container', t));
		candidates.sort((a, b) => b.score - a.score);

		// The best label-sourced candidate wins over everything else.
		const bestLabel = candidates.find(c => c.source === 'label');
		const primary = bestLabel || candidates[0];
		const questionText = primary ? primary.text : '';
		if (primary) {
			const rest = candidates.filter(c => c !== primary);
			candidates.length = 0;
			candidates.push(primary, ...rest);
		}

		const combined = candidates.map(c => c.text).join(' ') + ' ' + describedBy;
		const constraints = parseConstraints(combined);

		const wordy = (constraints.max_words || 0) > 10 || (constraints.max_chars || 0) > 80;
		const likelyEssay = controlType === 'textarea' || controlType === 'richtext' ||
			wordy || ESSAY_TERMS.test(combined);

		let structural;
		if (el.id) structural = '#' + CSS.escape(el.id);
		else if (el.name) structural = tag + '[name="' + el.name + '"]';
		else structural = '[data-af-field="' + fieldId + '"]';
		const readable = label || placeholder || ariaName || (tag + ' #' + controls.length);

		controls.push({
			index: controls.length,
			field_id: fieldId,
			tag: tag,
			control_type: controlType,
			id: el.id || '',
			name: el.name || '',
			placeholder: placeholder,
			autocomplete: el.getAttribute('autocomplete') || '',
			required: el.required || el.getAttribute('aria-required') === 'true',
			question_text: questionText,
			label: label,
			aria_name: ariaName,
			described_by: describedBy,
			container_prompts: container,
			prompt_candidates: candidates.slice(0, 8),
			constraints: constraints,
			locators: { selector: structural, readable: readable },
			likely_essay: !!likelyEssay,
			frame_url: frameUrl || window.location.href,
			frame_name: frameName || ''
		});
	});

	return controls;
}
`

// FocusFirstFieldJS focuses the first visible fillable control, so the
// operator sees where filling will begin.
const FocusFirstFieldJS = `
() => {
	const els = document.querySelectorAll('input, textarea, select, [contenteditable="true"]');
	for (const el of els) {
		const t = (el.type || '').toLowerCase();
		if (['hidden', 'submit', 'button', 'image', 'reset'].includes(t)) continue;
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0) continue;
		el.focus();
		return true;
	}
	return false;
}
`
