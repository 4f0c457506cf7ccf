package surface

import (
	"strings"

	"github.com/guilhermegouw/archlens/internal/svg"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{TITLE}}</title>
<style>
  body { margin: 0; font-family: sans-serif; background: #fff; }
  #stage { transform-origin: 0 0; transition: transform 0.1s; padding: 16px; }
  #diagram { max-width: 100%; height: auto; }
  #status { position: fixed; bottom: 8px; right: 12px; color: #888; font-size: 12px; }
</style>
</head>
<body>
<div id="stage">{{EMBED}}</div>
<div id="status">{{MODE}}</div>
<script>
(function () {
  var id = "{{ID}}";
  var mode = "{{MODE}}";
  var queue = [];
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws/" + id + "?mode=" + mode);

  function send(m) {
    if (ws.readyState === 1) { ws.send(JSON.stringify(m)); } else { queue.push(m); }
  }
  ws.onopen = function () {
    queue.splice(0).forEach(function (m) { ws.send(JSON.stringify(m)); });
  };
  ws.onmessage = function (e) {
    var m = JSON.parse(e.data);
    if (m.type === "zoom") {
      document.getElementById("stage").style.transform = "scale(" + m.zoom + ")";
    } else if (m.type === "reload") {
      location.replace("/view/" + m.id + "?mode=" + m.mode);
    }
  };

  window.drillDown = function (name) { send({ type: "drill", module: name }); };
  window.reportFailure = function () { send({ type: "error" }); };

  function wire(doc) {
    if (!doc) { return false; }
    doc.querySelectorAll("g.node").forEach(function (g) {
      var t = g.querySelector("title");
      if (!t) { return; }
      g.style.cursor = "pointer";
      g.addEventListener("click", function () { window.drillDown(t.textContent.trim()); });
    });
    doc.querySelectorAll("[data-module]").forEach(function (el) {
      el.style.cursor = "pointer";
      el.addEventListener("click", function () { window.drillDown(el.getAttribute("data-module")); });
    });
    return true;
  }

  var el = document.getElementById("diagram");
  if (mode === "object") {
    el.addEventListener("load", function () {
      if (!wire(el.contentDocument)) { window.reportFailure(); }
    });
  }
  el.addEventListener("error", function () { window.reportFailure(); });

  document.addEventListener("wheel", function (e) {
    if (!e.ctrlKey) { return; }
    e.preventDefault();
    send({ type: "wheel", notches: e.deltaY < 0 ? 1 : -1, ctrl: true });
  }, { passive: false });
})();
</script>
</body>
</html>
`

func viewerPage(id, mode, title string) string {
	src := "/blob/" + jsString(id)

	var embed string
	if mode == "image" {
		embed = `<img id="diagram" src="` + src + `" alt="Architecture diagram">`
	} else {
		embed = `<object id="diagram" type="image/svg+xml" data="` + src + `">Your viewer does not support SVG</object>`
	}

	return strings.NewReplacer(
		"{{TITLE}}", svg.EscapeHTML(title),
		"{{EMBED}}", embed,
		"{{ID}}", jsString(id),
		"{{MODE}}", mode,
	).Replace(pageTemplate)
}

// jsString keeps only characters that are safe inside a double-quoted
// script literal. Handle ids are uuids.
func jsString(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return -1
		}
	}, s)
}
