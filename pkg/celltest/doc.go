// Package celltest provides testing helpers for cells.
//
// # Props
//
// Build props fluently:
//
//	d := cell.NewDispatcher(nil)
//	p := celltest.NewProps("b1").
//	    WithClasses("btn", "primary").
//	    WithEvent("onclick", d.Bind("b1", "onclick", nil)).
//	    Build()
//
// # Slots
//
// Slots is a recording fake. It answers from fixed maps and remembers
// which resolution path the cell took:
//
//	s := celltest.ReplacementSlots(map[string]*vdom.VNode{"contents": vdom.Text("Go")})
//	node := cell.Button{}.Render(p, s)
//	if len(s.ChildCalls) != 0 {
//	    t.Error("named-child path should not run")
//	}
//
// # Render Assertions
//
//	celltest.ExpectAttribute(t, node, "class", "btn primary")
//	celltest.ExpectNoProp(t, node, "onclick")
package celltest
