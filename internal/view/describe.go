package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/ui"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Describe output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Describe shows the full run start document of a dataset together with its
// event descriptors.
type Describe struct {
	*tview.TextView

	header  *dao.Header
	doc     map[string]any
	format  string
	actions *ui.KeyActions
	backFn  func()
	wrapOn  bool
}

// NewDescribe creates a new describe view for a header.
func NewDescribe(h *dao.Header) *Describe {
	d := &Describe{
		TextView: tview.NewTextView(),
		header:   h,
		format:   FormatYAML,
		actions:  ui.NewKeyActions(),
	}

	d.SetDynamicColors(true)
	d.SetWrap(false)
	d.SetWordWrap(false)
	d.SetScrollable(true)
	d.SetBorder(true)
	d.SetBorderPadding(0, 0, 1, 1)
	d.SetBorderColor(tcell.ColorAqua)
	d.SetBackgroundColor(tcell.ColorDefault)

	return d
}

// Init builds the document and key bindings.
func (d *Describe) Init() error {
	doc, err := Document(d.header)
	if err != nil {
		return err
	}
	d.doc = doc
	d.bindKeys()
	d.SetInputCapture(d.keyboard)
	d.refresh()

	return nil
}

// Name returns the view name.
func (d *Describe) Name() string {
	return describePage
}

// Hints returns the menu hints for this view.
func (d *Describe) Hints() ui.MenuHints {
	return d.actions.Hints()
}

// SetBackFn sets the callback for back navigation.
func (d *Describe) SetBackFn(fn func()) {
	d.backFn = fn
}

// Format returns the current output format.
func (d *Describe) Format() string {
	return d.format
}

// Document assembles the run start document of h with its descriptors
// under event_descriptors.
func Document(h *dao.Header) (map[string]any, error) {
	if h == nil {
		return nil, fmt.Errorf("no dataset selected")
	}
	raw, err := dao.EncodeHeader(h)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	descs := make([]map[string]any, 0, len(h.EventDescriptors))
	for _, ed := range h.EventDescriptors {
		descs = append(descs, map[string]any{
			"uid":       ed.UID,
			"run_start": ed.RunStart,
			"time":      ed.Time,
			"name":      ed.Name,
			"data_keys": ed.Keys(),
		})
	}
	doc[dao.FieldEventDescriptors] = descs

	return doc, nil
}

func (d *Describe) bindKeys() {
	d.actions.Bulk(ui.KeyMap{
		ui.KeyY:      ui.NewKeyAction("YAML", d.formatCmd(FormatYAML), true),
		ui.KeyJ:      ui.NewKeyAction("JSON", d.formatCmd(FormatJSON), true),
		ui.KeyW:      ui.NewKeyAction("Wrap", d.toggleWrapCmd, true),
		tcell.KeyEsc: ui.NewKeyAction("Back", d.backCmd, true),
	})
}

func (d *Describe) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	if action, ok := d.actions.Get(ui.AsKey(evt)); ok {
		return action.Action(evt)
	}
	return evt
}

func (d *Describe) formatCmd(format string) ui.ActionHandler {
	return func(*tcell.EventKey) *tcell.EventKey {
		d.format = format
		d.refresh()
		return nil
	}
}

func (d *Describe) toggleWrapCmd(*tcell.EventKey) *tcell.EventKey {
	d.wrapOn = !d.wrapOn
	d.SetWrap(d.wrapOn)
	d.SetWordWrap(d.wrapOn)
	return nil
}

func (d *Describe) backCmd(*tcell.EventKey) *tcell.EventKey {
	if d.backFn != nil {
		d.backFn()
	}
	return nil
}

func (d *Describe) refresh() {
	d.Clear()
	d.SetText(d.content())
	d.SetTitle(fmt.Sprintf(" dataset/%s [%s] ", d.header.UID.Short(), strings.ToUpper(d.format)))
	d.ScrollToBeginning()
}

func (d *Describe) content() string {
	switch d.format {
	case FormatJSON:
		out, err := json.MarshalIndent(d.doc, "", "  ")
		if err != nil {
			return fmt.Sprintf("[red::]# unable to render json: %v[-::]", err)
		}
		return tview.Escape(string(out))
	default:
		out, err := yaml.Marshal(d.doc)
		if err != nil {
			return fmt.Sprintf("[red::]# unable to render yaml: %v[-::]", err)
		}
		return highlightYAML(string(out))
	}
}

// highlightYAML colors keys and scalar values of a YAML document.
func highlightYAML(content string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		idx := strings.Index(line, ":")
		if idx <= 0 || strings.HasPrefix(strings.TrimSpace(line), "#") {
			b.WriteString(tview.Escape(line))
			b.WriteString("\n")
			continue
		}

		key, value := line[:idx], strings.TrimSpace(line[idx+1:])
		trimmed := strings.TrimLeft(key, " -")
		indent := key[:len(key)-len(trimmed)]
		if strings.ContainsAny(trimmed, " \"'") {
			b.WriteString(tview.Escape(line))
			b.WriteString("\n")
			continue
		}

		fmt.Fprintf(&b, "%s[aqua::]%s:[-::]", indent, tview.Escape(trimmed))
		if value != "" {
			b.WriteString(" ")
			b.WriteString(colorizeValue(value))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func colorizeValue(value string) string {
	escaped := tview.Escape(value)
	trimmed := strings.Trim(value, "\"'")

	switch {
	case trimmed == "true":
		return "[green::]" + escaped + "[-::]"
	case trimmed == "false":
		return "[red::]" + escaped + "[-::]"
	case trimmed == "null" || trimmed == "~":
		return "[gray::]" + escaped + "[-::]"
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return "[fuchsia::]" + escaped + "[-::]"
	}

	return escaped
}
