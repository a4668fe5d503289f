package task

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Payload is the wire document posted to a participant's intake
// endpoint. Field names match the notify contract on the other side.
type Payload struct {
	Email         string       `json:"email"`
	Secret        string       `json:"secret"`
	Task          string       `json:"task"`
	Round         int          `json:"round"`
	Nonce         string       `json:"nonce"`
	Brief         string       `json:"brief"`
	Checks        []string     `json:"checks"`
	EvaluationURL string       `json:"evaluation_url"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

type BuildParams struct {
	TemplateID    string
	Seed          int64 // 0 derives a seed from the current time
	Email         string
	Secret        string
	Round         int
	EvaluationURL string
}

func formatSeed(seed int64) string {
	return strconv.FormatInt(seed, 10)
}

// Label derives the task label from template id and seed. It is
// deterministic: task identity is reconstructable from the label.
func Label(templateID string, seed int64) string {
	s := formatSeed(seed)
	if len(s) > 5 {
		s = s[:5]
	}
	return templateID + "-" + s
}

// Build assembles a payload for one recipient. The nonce is fresh per
// call regardless of seed, so retried sends of the same conceptual
// task stay distinguishable on the receiving side.
func Build(p BuildParams) (*Payload, error) {
	tpl, ok := TemplateByID(p.TemplateID)
	if !ok {
		return nil, errors.Errorf("unknown task template: %s", p.TemplateID)
	}

	seed := p.Seed
	if seed == 0 {
		// Collision-avoidant for human-paced runs, nothing stronger.
		seed = time.Now().Unix() % 100000
	}

	payload := &Payload{
		Email:         p.Email,
		Secret:        p.Secret,
		Task:          Label(p.TemplateID, seed),
		Round:         p.Round,
		Nonce:         uuid.NewString(),
		Brief:         tpl.Brief(seed),
		Checks:        append([]string(nil), tpl.Checks...),
		EvaluationURL: p.EvaluationURL,
	}

	if tpl.Attachments != nil {
		attachments, err := tpl.Attachments()
		if err != nil {
			return nil, errors.Wrapf(err, "building attachments for %s", p.TemplateID)
		}
		payload.Attachments = attachments
	}

	return payload, nil
}
