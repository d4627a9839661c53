package post

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"backend-travelapp/internal/shared/apperr"
)

var errInvalidComponent = apperr.Validation("INVALID_COMPONENT", "invalid component content")

func parseComponents(inputs []ComponentInput) ([]Component, error) {
	if len(inputs) == 0 {
		return nil, apperr.Validation("INVALID_POST", "components required")
	}
	out := make([]Component, 0, len(inputs))
	for i, in := range inputs {
		c, err := in.toComponent(i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (in ComponentInput) toComponent(position int) (Component, error) {
	c := Component{Order: in.Order, Type: ComponentType(in.Type), position: position}

	switch c.Type {
	case ComponentText:
		var p TextPayload
		if err := decodeContent(in.Content, &p); err != nil {
			return Component{}, err
		}
		if strings.TrimSpace(p.Content) == "" {
			return Component{}, apperr.WithMessage(errInvalidComponent, "text component requires content")
		}
		c.Text = &p
	case ComponentPhoto:
		var p PhotoPayload
		if err := decodeContent(in.Content, &p); err != nil {
			return Component{}, err
		}
		if p.URL == "" {
			return Component{}, apperr.WithMessage(errInvalidComponent, "photo component requires url")
		}
		c.Photo = &p
	case ComponentVideo:
		var p VideoPayload
		if err := decodeContent(in.Content, &p); err != nil {
			return Component{}, err
		}
		if p.URL == "" {
			return Component{}, apperr.WithMessage(errInvalidComponent, "video component requires url")
		}
		if p.Duration < 0 {
			return Component{}, apperr.WithMessage(errInvalidComponent, "video duration must not be negative")
		}
		c.Video = &p
	default:
		return Component{}, apperr.WithMessage(apperr.ErrInvalidComponentType, fmt.Sprintf("invalid component type %q", in.Type))
	}
	return c, nil
}

func decodeContent(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return apperr.WithMessage(errInvalidComponent, "component content required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Wrap(errInvalidComponent, err)
	}
	return nil
}

// sortComponents orders by Order, then by the caller's original position.
func sortComponents(cs []Component) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Order != cs[j].Order {
			return cs[i].Order < cs[j].Order
		}
		return cs[i].position < cs[j].position
	})
}
