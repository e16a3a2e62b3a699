package server

import (
	"html/template"
	"net/http"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/canvas/svg"
)

type pageData struct {
	ID  string
	SVG template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), DefaultCanvasID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var doc []byte
	sess.View(func(_ *canvas.Canvas, surf *svg.Surface) { doc = surf.Bytes() })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, pageData{ID: sess.ID, SVG: template.HTML(doc)}); err != nil {
		s.logger.Error("render page", "err", err)
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>MetricFlow</title>
<style>
  body { margin: 0; font-family: "Go", sans-serif; background: #f5f6f7; }
  #canvas { overflow: auto; }
  .ko-node { user-select: none; }
</style>
</head>
<body>
<div id="canvas" data-id="{{.ID}}">{{.SVG}}</div>
<script>
(function () {
  const host = document.getElementById("canvas");
  const id = host.dataset.id;
  const layers = { defs: "defs", links: "#relationSvgs", nodes: "#nodes" };
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + location.host + "/canvases/" + encodeURIComponent(id) + "/live");
  let down = false;

  function svg() { return host.querySelector("svg"); }

  function apply(p) {
    const el = document.getElementById(p.id);
    if (p.op === "remove") { if (el) el.remove(); return; }
    if (p.op === "cursor") { if (el) el.style.cursor = p.cursor; return; }
    if (el) { el.outerHTML = p.markup; return; }
    const layer = svg().querySelector(layers[p.layer]);
    if (layer) layer.insertAdjacentHTML("beforeend", p.markup);
  }

  ws.onmessage = function (e) {
    const m = JSON.parse(e.data);
    if (m.type === "reset") { host.innerHTML = m.svg; return; }
    (m.patches || []).forEach(apply);
  };

  function point(e) {
    const s = svg();
    const pt = s.createSVGPoint();
    pt.x = e.clientX;
    pt.y = e.clientY;
    return pt.matrixTransform(s.getScreenCTM().inverse());
  }

  function send(type, e) {
    if (ws.readyState !== WebSocket.OPEN) return;
    const node = e.target.closest ? e.target.closest(".ko-node") : null;
    const p = point(e);
    ws.send(JSON.stringify({ type: type, target: node ? node.id : "", x: p.x, y: p.y }));
  }

  function bound(type, e) {
    const node = e.target.closest ? e.target.closest(".ko-node") : null;
    return node && (node.dataset.events || "").split(" ").indexOf(type) >= 0;
  }

  host.addEventListener("mousedown", function (e) { down = true; send("mousedown", e); });
  window.addEventListener("mousemove", function (e) { if (down || bound("mousemove", e)) send("mousemove", e); });
  window.addEventListener("mouseup", function (e) { if (down) { down = false; send("mouseup", e); } });
  ["click", "dblclick", "mouseover", "mouseout", "mouseenter", "mouseleave", "contextmenu"].forEach(function (type) {
    host.addEventListener(type, function (e) { if (bound(type, e)) send(type, e); }, true);
  });
})();
</script>
</body>
</html>
`))
