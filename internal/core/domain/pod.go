package domain

// Port keys the pool service exposes on every pod. The frontend serves the
// user-facing app, the control port serves the pod's own management API.
const (
	FrontendPortKey = "3000"
	ControlPortKey  = "15552"
)

// Pod is a denormalized snapshot of an externally managed pod, valid only at
// the moment the pool service returned it.
type Pod struct {
	ID           string            `json:"id"`
	FQDN         string            `json:"fqdn"`
	URL          string            `json:"url"`
	Password     string            `json:"-"`
	PortMappings map[string]string `json:"port_mappings"`
	Repositories []string          `json:"repositories,omitempty"`
	Branches     []string          `json:"branches,omitempty"`
	State        string            `json:"state"`
}

// FrontendURL derives the user-facing URL from the pod's port mappings:
// the well-known frontend port wins, otherwise a sole mapping is taken as the
// frontend. Anything else is ambiguous and an error.
func (p *Pod) FrontendURL() (string, error) {
	if u, ok := p.PortMappings[FrontendPortKey]; ok {
		return u, nil
	}
	if len(p.PortMappings) == 1 {
		for _, u := range p.PortMappings {
			return u, nil
		}
	}
	return "", ErrNoFrontend
}

// ControlURL returns the pod's control-plane URL when mapped
func (p *Pod) ControlURL() (string, bool) {
	u, ok := p.PortMappings[ControlPortKey]
	return u, ok && u != ""
}
