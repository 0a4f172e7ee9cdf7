package cell

import (
	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/pkg/vdom"
)

// PlaceholderType is the cell-type marker of the node that stands in for a
// cell that failed to render.
const PlaceholderType = "Traceback"

// Placeholder builds the node substituted for a failing cell.
func Placeholder(cellID string, err error) *vdom.VNode {
	return vdom.Div(
		vdom.Data("cell-id", cellID),
		vdom.Data("cell-type", PlaceholderType),
		vdom.Data("error-code", cellerr.Code(err)),
		vdom.Class("cell-error"),
		vdom.Pre(vdom.Text(err.Error())),
	)
}
