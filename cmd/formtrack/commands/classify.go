package commands

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
	"git.home.luguber.info/inful/formtrack/internal/classify"
)

// ClassifyCmd implements the 'classify' command.
type ClassifyCmd struct {
	ID      string `arg:"" help:"Field identifier of the error entry"`
	Message string `arg:"" optional:"" help:"Human-readable error message"`
	JSON    bool   `help:"Print the classification as JSON"`
}

func (c *ClassifyCmd) Run(g *Global, _ *CLI) error {
	entry := classify.ErrorEntry{ID: c.ID, Message: c.Message}
	cl := classify.ClassifyEntry(entry)
	if !c.JSON {
		_, err := fmt.Fprintln(g.Out, cl.String())
		return err
	}
	enc := json.NewEncoder(g.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Entry          classify.ErrorEntry     `json:"entry"`
		Classification classify.Classification `json:"classification"`
		Event          analytics.Event         `json:"event"`
	}{entry, cl, analytics.FromClassification(cl)})
}
