package spec

import (
	"strings"
	"testing"

	"github.com/matzehuels/metricflow/pkg/canvas"
)

const methodJSON = `{
  "id": "UserController.list",
  "name": "UserController.list",
  "methodType": "Controller",
  "avgRunTime": 12.5, "maxRunTime": 40, "minRunTime": 3,
  "children": [
    {"id": "UserService.find", "className": "UserService", "methodName": "find",
     "avgRunTime": 10, "maxRunTime": 30, "minRunTime": 2,
     "children": [{"id": "UserDao.query", "name": "UserDao.query", "avgRunTime": 8, "maxRunTime": 25, "minRunTime": 1}]},
    {"id": "AuditService.log", "name": "AuditService.log", "avgRunTime": 1, "maxRunTime": 2, "minRunTime": 0.5,
     "children": [{"id": "UserDao.query", "name": "UserDao.query"}]}
  ]
}`

func TestMethodTree(t *testing.T) {
	root, err := ReadMethodTree(strings.NewReader(methodJSON))
	if err != nil {
		t.Fatalf("ReadMethodTree: %v", err)
	}

	slow := canvas.Style{TitleColor: "#c0392b"}
	spec := MethodTree(root, 10, 20, ThresholdStyle{Threshold: 10, Slow: slow})

	if x, y, ok := spec.Position(); !ok || x != 10 || y != 20 {
		t.Errorf("root position = %g %g %v", x, y, ok)
	}
	if len(spec.Data) != 3 || spec.Data[0].Name != "avg: 12.5 ms" || spec.Data[2].Name != "min: 3 ms" {
		t.Errorf("rows = %+v", spec.Data)
	}
	if spec.Style.TitleColor != "#c0392b" {
		t.Error("slow root not highlighted")
	}

	service := spec.Children[0]
	if service.Title != "UserService.find" {
		t.Errorf("title fallback = %q", service.Title)
	}
	if service.Style.TitleColor != "#c0392b" {
		t.Error("method at threshold not highlighted")
	}
	audit := spec.Children[1]
	if audit.Style.TitleColor != "" || len(audit.Children) != 0 {
		t.Errorf("audit = %+v", audit)
	}
	dao := service.Children[0]
	if len(dao.From) != 1 || dao.From[0] != "AuditService.log" {
		t.Errorf("shared callee from = %v", dao.From)
	}

	c, err := canvas.New(nopSurface{}, canvas.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.CreateNodes(spec); err != nil {
		t.Fatalf("CreateNodes: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("nodes = %d, want 4", c.Len())
	}
	if _, ok := c.Connector("AuditService.log", "UserDao.query"); !ok {
		t.Error("second caller not linked")
	}
}

func TestReadMethodTreeErrors(t *testing.T) {
	for _, data := range []string{`{`, `{"name": "no id"}`} {
		if _, err := ReadMethodTree(strings.NewReader(data)); err == nil {
			t.Errorf("ReadMethodTree(%s) succeeded", data)
		}
	}
}
