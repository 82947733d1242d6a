package pagebridge

import (
	"encoding/json"
	"strings"

	"page-marker/internal/marker"
)

// namespace is the page-side state shared by every script: the node table of the last
// snapshot, the live overlays by id and the installed stylesheet.
const namespace = `const pm = (window.__pageMarker = window.__pageMarker || { nodes: [], overlays: new Map(), seq: 0, generation: 0, style: null });`

// snapshotTemplate captures every element in tree order. Text and rects are only shipped
// for elements that can pass the inclusion policy; every element still gets an index so
// hit-test results and parent links can point at it.
const snapshotTemplate = `() => {
	__NAMESPACE__
	const interactive = new Set(__TAGS__);
	const all = Array.prototype.slice.call(document.querySelectorAll("*"));
	const indexOf = new Map();
	all.forEach((el, i) => indexOf.set(el, i));

	pm.nodes = all;
	pm.generation += 1;

	const vw = Math.max(document.documentElement.clientWidth || 0, window.innerWidth || 0);
	const vh = Math.max(document.documentElement.clientHeight || 0, window.innerHeight || 0);

	const elements = all.map((el) => {
		const tag = el.tagName.toLowerCase();
		const parent = el.parentElement;
		const cursor = window.getComputedStyle(el).cursor;
		const onclick = el.onclick != null;
		const item = {
			tag: tag,
			parent: parent && indexOf.has(parent) ? indexOf.get(parent) : -1,
			onclick: onclick,
			cursor: cursor,
		};

		if (!(interactive.has(tag) || onclick || cursor === "pointer")) {
			return item;
		}

		item.text = el.textContent || "";
		const aria = el.getAttribute("aria-label");
		if (aria !== null) {
			item.ariaLabel = aria;
		}
		item.rects = [...el.getClientRects()].map((bb) => {
			const hit = document.elementFromPoint(bb.left + bb.width / 2, bb.top + bb.height / 2);
			return {
				left: bb.left,
				top: bb.top,
				width: bb.width,
				height: bb.height,
				hit: hit && indexOf.has(hit) ? indexOf.get(hit) : -1,
			};
		});

		return item;
	});

	return { generation: pm.generation, viewport: { width: vw, height: vh }, elements: elements };
}`

const installStyleScript = `(css) => {
	` + namespace + `
	if (pm.style && pm.style.isConnected) {
		return false;
	}
	const tag = document.createElement("style");
	tag.textContent = css;
	document.head.append(tag);
	pm.style = tag;
	return true;
}`

const appendOverlayScript = `(box) => {
	` + namespace + `
	const outline = document.createElement("div");
	outline.style.outline = "2px dashed " + box.color;
	outline.style.position = "fixed";
	outline.style.left = box.left + "px";
	outline.style.top = box.top + "px";
	outline.style.width = box.width + "px";
	outline.style.height = box.height + "px";
	outline.style.pointerEvents = "none";
	outline.style.boxSizing = "border-box";
	outline.style.zIndex = 2147483647;

	const label = document.createElement("span");
	label.textContent = box.label;
	label.style.position = "absolute";
	label.style.top = "-19px";
	label.style.left = "0px";
	label.style.background = box.color;
	label.style.color = "white";
	label.style.padding = "2px 4px";
	label.style.fontSize = "12px";
	label.style.fontWeight = "bold";
	label.style.borderRadius = "2px";
	outline.appendChild(label);

	document.body.appendChild(outline);
	pm.seq += 1;
	pm.overlays.set(pm.seq, outline);
	return pm.seq;
}`

const removeOverlayScript = `(id) => {
	` + namespace + `
	const outline = pm.overlays.get(id);
	if (outline) {
		outline.remove();
		pm.overlays.delete(id);
	}
	return true;
}`

// ResolveNodeScript returns the element a NodeRef points at, or null when the ref
// belongs to an older snapshot.
const ResolveNodeScript = `(ref) => {
	const pm = window.__pageMarker;
	if (!pm || pm.generation !== ref.generation) {
		return null;
	}
	return pm.nodes[ref.index] || null;
}`

// ScrollScript scrolls the window, or the element a NodeRef points at when its index is
// not negative, by dy pixels and returns the resulting window offset.
const ScrollScript = `(arg) => {
	const pm = window.__pageMarker;
	let target = window;
	if (arg.index >= 0) {
		if (!pm || pm.generation !== arg.generation || !pm.nodes[arg.index]) {
			throw new Error("stale element reference");
		}
		target = pm.nodes[arg.index];
	}
	target.scrollBy(0, arg.dy);
	return window.scrollY;
}`

var snapshotScript = buildSnapshotScript(marker.InteractiveTags())

func buildSnapshotScript(tags []string) string {
	encoded, _ := json.Marshal(tags)

	return strings.NewReplacer(
		"__NAMESPACE__", namespace,
		"__TAGS__", string(encoded),
	).Replace(snapshotTemplate)
}
