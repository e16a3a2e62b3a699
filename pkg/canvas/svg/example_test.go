package svg_test

import (
	"fmt"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/canvas/svg"
)

func Example() {
	surface, err := svg.New("graph", "800px", "600px")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	c, err := canvas.New(surface, canvas.DefaultOptions())
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	err = c.CreateNodes(canvas.NodeSpec{
		ID: "api", Title: "GET /users", X: canvas.Px(40), Y: canvas.Px(200),
		Data: []canvas.DataRow{{Name: "avg 12ms"}},
		Children: []canvas.NodeSpec{
			{ID: "db", Title: "SELECT users"},
			{ID: "cache", Title: "redis GET", Kind: canvas.KindRectangle},
		},
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, conn := range c.Connectors() {
		fmt.Println(conn.ID, conn.Route.Side)
	}
	for _, e := range surface.Layer(svg.LayerLinks) {
		fmt.Println(e.ID)
	}
	// Output:
	// line-api-db right
	// line-api-cache right
	// line-api-db
	// pointstart-api-db
	// pointend-api-db
	// line-api-cache
	// pointstart-api-cache
	// pointend-api-cache
}
