package inplace

import (
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Committer turns relay replies into result node content.
type Committer struct {
	policy *bluemonday.Policy
}

// NewCommitter creates a committer. Backend output is passed through policy
// before it reaches the page; a nil policy writes it as received.
func NewCommitter(policy *bluemonday.Policy) *Committer {
	return &Committer{policy: policy}
}

// Render decodes reply and returns the markup to write into the result node.
func (c *Committer) Render(adapter Adapter, reply Reply) (string, error) {
	env, err := reply.Decode()
	if err != nil {
		return "", &ReplyError{Message: "malformed reply envelope", Cause: err, Service: adapter.Service()}
	}

	inner, err := adapter.ExtractResult(env.Data)
	if err != nil {
		return "", &ReplyError{Message: "extracting result", Cause: err, Service: adapter.Service()}
	}

	if c.policy != nil {
		inner = c.policy.Sanitize(inner)
	}
	return inner, nil
}

// Commit writes the rendered reply into result. On error result is left
// exactly as it was.
func (c *Committer) Commit(result *html.Node, adapter Adapter, reply Reply) error {
	inner, err := c.Render(adapter, reply)
	if err != nil {
		return err
	}
	return c.write(result, adapter.Service(), inner)
}

func (c *Committer) write(result *html.Node, service ServiceID, inner string) error {
	if err := setInnerHTML(result, inner); err != nil {
		return &ReplyError{Message: "parsing result markup", Cause: err, Service: service}
	}
	return nil
}
