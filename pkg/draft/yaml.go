package draft

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/shablon/pkg/condition"
	"github.com/aretw0/shablon/pkg/domain"
	"gopkg.in/yaml.v3"
)

// yamlDraft is the authoring file format:
//
//	name: Onboarding
//	owner: 1
//	steps:
//	  - id: 1
//	    title: Ready?
//	    kind: question
//	    start: true
//	    variables:
//	      - {name: ready, type: bool}
//	    next:
//	      - {to: 2, when: 'ready==true', label: "Yes"}
type yamlDraft struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Owner       int64      `yaml:"owner"`
	Steps       []yamlStep `yaml:"steps"`
}

type yamlStep struct {
	ID        domain.LocalID `yaml:"id"`
	Title     string         `yaml:"title"`
	Kind      string         `yaml:"kind"`
	Content   string         `yaml:"content"`
	Message   string         `yaml:"message"`
	Start     bool           `yaml:"start"`
	Terminal  bool           `yaml:"terminal"`
	Sort      *int           `yaml:"sort"`
	Variables []yamlVariable `yaml:"variables"`
	Next      []yamlNext     `yaml:"next"`
}

type yamlVariable struct {
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"`
	Default string         `yaml:"default"`
	Options map[string]any `yaml:"options"`
}

type yamlNext struct {
	To    domain.LocalID `yaml:"to"`
	Label string         `yaml:"label"`
	When  string         `yaml:"when"`
}

// LoadYAML decodes a draft from YAML.
// Steps without an id get the next free local id in file order. A step without
// a sort hint sorts by its position in the file. Unknown fields and unknown step
// kinds are rejected. Dangling "to" references are kept: the compiler drops them.
func LoadYAML(r io.Reader, defaultOwner int64) (domain.Draft, error) {
	var doc yamlDraft
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return domain.Draft{}, fmt.Errorf("decode draft: %w", err)
	}

	owner := doc.Owner
	if owner == 0 {
		owner = defaultOwner
	}
	d := domain.Draft{
		Template: domain.DraftTemplate{OwnerID: owner, Name: doc.Name, Description: doc.Description},
	}

	var maxID domain.LocalID
	for _, s := range doc.Steps {
		maxID = max(maxID, s.ID)
	}

	for i, s := range doc.Steps {
		kind := domain.StepKind(strings.ToLower(strings.TrimSpace(s.Kind)))
		if kind == "" {
			kind = domain.KindInfo
		}
		if !kind.Valid() {
			return domain.Draft{}, fmt.Errorf("step %q: unknown kind %q (want one of %v)", s.Title, s.Kind, domain.Kinds)
		}
		id := s.ID
		if id == 0 {
			maxID++
			id = maxID
		}
		sortHint := (i + 1) * 10
		if s.Sort != nil {
			sortHint = *s.Sort
		}
		d.Steps = append(d.Steps, domain.DraftStep{
			LocalID:    id,
			Title:      s.Title,
			Content:    s.Content,
			Message:    s.Message,
			Kind:       kind,
			IsStart:    s.Start,
			IsTerminal: s.Terminal,
			SortHint:   sortHint,
		})

		for _, v := range s.Variables {
			dv := domain.DraftVariable{StepLocalID: id, Name: v.Name, Type: v.Type, DefaultValue: v.Default}
			if len(v.Options) > 0 {
				raw, err := json.Marshal(v.Options)
				if err != nil {
					return domain.Draft{}, fmt.Errorf("step %q variable %q: options: %w", s.Title, v.Name, err)
				}
				dv.Options = raw
			}
			d.Variables = append(d.Variables, dv)
		}
		for _, n := range s.Next {
			d.Transitions = append(d.Transitions, domain.DraftTransition{
				FromLocalID: id,
				ToLocalID:   n.To,
				Label:       n.Label,
				Condition:   condition.EncodePayload(n.When),
			})
		}
	}
	return d, nil
}
