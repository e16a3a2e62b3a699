// Package svg implements [canvas.Surface] as an in-memory SVG document.
//
// Every drawn item is an element with a stable id: the node id for nodes,
// and line-S-T, pointstart-S-T and pointend-S-T for the three parts of the
// connector from S to T, with "-" in S and T escaped as "~1" and "~" as
// "~0". Node ids that would collide with these, with arrowhead markers or
// with the document's own groups are rejected. Each element carries a revision that increases
// whenever it is redrawn, and every change is appended to a journal that
// [Surface.Flush] drains as a list of [Patch] values. The live server sends
// those patches to browsers; the CLI writes the whole document with
// [Surface.WriteTo].
//
// Node sizes are measured with the Go Regular font (pkg/fonts), following
// the box model of the classic metric node: a title bar, one row per data
// entry, a border, and 5px of slack around the result.
package svg
