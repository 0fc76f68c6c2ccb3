// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"

	"github.com/arthur-debert/wasmstash/pkg/types"
	"github.com/arthur-debert/wasmstash/pkg/ui/styles"
	"github.com/pterm/pterm"
)

// Renderer provides styled report lines and a closing summary
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderEntry renders one report line with the status colored
func (r *Renderer) RenderEntry(entry types.Entry, withSize bool) error {
	name := styles.GetStyle("Name").Render(entry.Artifact.Name)
	sum := styles.GetStyle("Digest").Render(entry.Digest)

	if entry.Status == "" {
		_, err := fmt.Fprintf(r.output, "%s: %s\n", name, sum)
		return err
	}

	status := styles.GetStyle(string(entry.Status)).Render(string(entry.Status))
	line := fmt.Sprintf("%s: %s: %s", status, name, sum)
	if withSize {
		line += " " + styles.GetStyle("Size").Render(fmt.Sprintf("(%dkb)", entry.SizeKiB()))
	}
	_, err := fmt.Fprintln(r.output, line)
	return err
}

// RenderResult renders a summary after the streamed entries
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *types.Result:
		return r.renderSummary(v)
	case *types.VerifyResult:
		return r.renderVerify(v)
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) renderSummary(res *types.Result) error {
	muted := styles.GetStyle("Muted")

	if res.Command == "hash" {
		_, err := fmt.Fprintln(r.output, muted.Render(fmt.Sprintf("%d artifacts in %s", len(res.Entries), res.SourceDir)))
		return err
	}

	if len(res.Entries) == 0 {
		_, err := fmt.Fprintln(r.output, muted.Render(fmt.Sprintf("No artifacts found in %s", res.SourceDir)))
		return err
	}

	summary := fmt.Sprintf("%s new, %s old in %s",
		styles.GetStyle("New").Render(fmt.Sprint(res.Count(types.StatusNew))),
		styles.GetStyle("Old").Render(fmt.Sprint(res.Count(types.StatusOld))),
		res.DestDir)
	if _, err := fmt.Fprintln(r.output, summary); err != nil {
		return err
	}

	if res.DryRun {
		_, err := fmt.Fprintln(r.output, styles.GetStyle("DryRunBanner").Render("Dry run: nothing was written"))
		return err
	}
	return nil
}

func (r *Renderer) renderVerify(res *types.VerifyResult) error {
	for _, m := range res.Mismatches {
		line := fmt.Sprintf("%s %s: %s",
			styles.GetStyle("Error").Render("Mismatch"),
			m.Path,
			styles.GetStyle("Digest").Render(m.Digest))
		if _, err := fmt.Fprintln(r.output, line); err != nil {
			return err
		}
	}

	for _, path := range res.Foreign {
		line := fmt.Sprintf("%s %s", styles.GetStyle("Muted").Render("Foreign"), path)
		if _, err := fmt.Fprintln(r.output, line); err != nil {
			return err
		}
	}

	if res.OK() {
		_, err := fmt.Fprintln(r.output, styles.GetStyle("Success").Render(
			fmt.Sprintf("All %d entries in %s match their digest", res.Checked, res.DestDir)))
		return err
	}
	_, err := fmt.Fprintln(r.output, styles.GetStyle("Warning").Render(
		fmt.Sprintf("%d of %d entries do not match their digest", len(res.Mismatches), res.Checked)))
	return err
}

// RenderError renders an error with the pterm error prefix
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "%s %s\n",
		pterm.Error.Prefix.Style.Sprint(" "+pterm.Error.Prefix.Text+" "),
		pterm.Error.MessageStyle.Sprint(err.Error()))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, styles.GetStyle("Muted").Render(msg))
	return err
}
