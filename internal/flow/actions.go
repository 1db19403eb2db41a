package flow

import "github.com/Raiwe17/ProektSite/internal/graph"

// Actions is implemented by the host that performs side effects requested by
// NAVIGATE, LINK and ALERT nodes.
type Actions interface {
	Navigate(pageID string)
	OpenLink(url string, newTab bool)
	Alert(message string)
}

// NopActions discards every action.
type NopActions struct{}

func (NopActions) Navigate(string)       {}
func (NopActions) OpenLink(string, bool) {}
func (NopActions) Alert(string)          {}

// dispatch evaluates an action node and fires it on a rising edge of its
// trigger input. Action nodes have no value of their own.
func (p *pass) dispatch(n *graph.Node) any {
	triggers := p.ctx.Triggers
	if triggers == nil {
		triggers = p.ev.triggers
	}
	trigger := p.input(n, graph.SocketTrigger)
	rising := trigger == true && !triggers.Last(n.ID)
	value := Normalize(n.Value())

	switch n.Type {
	case graph.KindNavigate:
		if rising && Truthy(value) {
			p.ev.actions.Navigate(ToString(value))
		}

	case graph.KindLink:
		url := p.input(n, graph.SocketURL)
		if !Truthy(url) {
			url = value
		}
		var newTab bool
		if v := p.input(n, graph.SocketNewTab); v != nil {
			newTab = Truthy(v)
		} else {
			newTab = n.Decode().NewTab
		}
		if rising && Truthy(url) {
			p.ev.actions.OpenLink(ToString(url), newTab)
		}

	case graph.KindAlert:
		msg := p.input(n, graph.SocketMessage)
		if !Truthy(msg) {
			msg = value
		}
		if rising && Truthy(msg) {
			p.ev.actions.Alert(ToString(msg))
		}
	}

	triggers.Record(n.ID, trigger == true)
	return nil
}
