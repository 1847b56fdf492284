package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vuedoc/internal/entry"
	"vuedoc/internal/extractor"
	"vuedoc/internal/graph"
	"vuedoc/internal/script"
)

const (
	anchorPrefix = "<!-- vuedoc:"
	anchorSuffix = " -->"

	// DiagramSectionID anchors the dependency diagram.
	DiagramSectionID = "dependency-graph"

	DocFileName    = "documentation.md"
	JSONFileName   = "components.json"
	ReportFileName = "pipeline_report.json"
)

// Anchor returns the marker line opening the section of id.
func Anchor(id string) string {
	return anchorPrefix + id + anchorSuffix
}

// MarkdownGenerator produces documentation in Markdown format.
type MarkdownGenerator struct {
	root    string
	mermaid *MermaidGenerator
}

// NewMarkdownGenerator creates a generator printing paths relative to root.
func NewMarkdownGenerator(root string) *MarkdownGenerator {
	return &MarkdownGenerator{
		root:    root,
		mermaid: &MermaidGenerator{root: root},
	}
}

// GenerateDocs renders g into outputDir in the given format.
func (g *MarkdownGenerator) GenerateDocs(ctx context.Context, gr *graph.Graph, outputDir string, format Format) error {
	report := NewPipelineReport("full_generate", outputDir)
	return g.GenerateDocsWithReport(ctx, gr, outputDir, format, report)
}

// GenerateDocsWithReport renders g and writes stage metrics to the run report.
func (g *MarkdownGenerator) GenerateDocsWithReport(ctx context.Context, gr *graph.Graph, outputDir string, format Format, report *PipelineReport) (retErr error) {
	if report == nil {
		report = NewPipelineReport("full_generate", outputDir)
	}
	defer func() {
		if retErr != nil {
			report.AddSignal(Signal{Code: "full_generate_failed", Stage: "generator", Severity: SeverityCritical, Message: "full documentation generation failed", Value: 1})
		}
		if err := report.Save(filepath.Join(outputDir, ReportFileName)); err != nil && retErr == nil {
			retErr = fmt.Errorf("failed to write pipeline report: %w", err)
		}
	}()

	stage := report.BeginStage("init_output_dir")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		stage.End(nil, err)
		return err
	}
	stage.End(nil, nil)

	if err := ctx.Err(); err != nil {
		return err
	}

	docs := Docs(gr)
	for _, doc := range docs {
		report.AddComponent(doc, "rendered")
	}

	switch format {
	case FormatJSON:
		stage = report.BeginStage("render_json")
		data, err := RenderJSON(docs)
		if err == nil {
			err = ValidateJSON(data)
		}
		if err == nil {
			err = os.WriteFile(filepath.Join(outputDir, JSONFileName), data, 0o644)
		}
		if err != nil {
			stage.End(nil, err)
			return err
		}
		stage.End(map[string]float64{"components_total": float64(len(docs))}, nil)
	default:
		stage = report.BeginStage("render_markdown")
		rendered := g.Render(gr)
		if err := os.WriteFile(filepath.Join(outputDir, DocFileName), []byte(rendered), 0o644); err != nil {
			stage.End(nil, err)
			return err
		}
		stage.End(map[string]float64{
			"components_total": float64(len(docs)),
			"bytes":            float64(len(rendered)),
		}, nil)
	}
	return nil
}

// Docs returns the component docs of g in path order.
func Docs(g *graph.Graph) []*extractor.ComponentDoc {
	paths := g.Paths()
	docs := make([]*extractor.ComponentDoc, 0, len(paths))
	for _, p := range paths {
		docs = append(docs, g.Nodes[p].Doc)
	}
	return docs
}

// RenderJSON encodes docs as an indented JSON array.
func RenderJSON(docs []*extractor.ComponentDoc) ([]byte, error) {
	if docs == nil {
		docs = []*extractor.ComponentDoc{}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode components: %w", err)
	}
	return append(data, '\n'), nil
}

// Render builds the whole document: a title, the dependency diagram and
// one anchored section per component.
func (g *MarkdownGenerator) Render(gr *graph.Graph) string {
	var sb strings.Builder
	sb.WriteString("# Components\n\n")
	sb.WriteString("Generated by vuedoc. Sections between markers are rewritten on update.\n\n")
	sb.WriteString(g.RenderDiagram(gr))
	for _, doc := range Docs(gr) {
		sb.WriteString(g.RenderComponent(doc))
	}
	return sb.String()
}

// RenderDiagram renders the anchored dependency diagram section.
func (g *MarkdownGenerator) RenderDiagram(gr *graph.Graph) string {
	var sb strings.Builder
	sb.WriteString(Anchor(DiagramSectionID) + "\n")
	sb.WriteString("## Dependency graph\n\n")
	if diagram := g.mermaid.GenerateDependencyDiagram(gr); diagram != "" {
		sb.WriteString(diagram)
	} else {
		sb.WriteString("_No component imports another module._\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// RenderComponent renders the anchored section of one component.
func (g *MarkdownGenerator) RenderComponent(doc *extractor.ComponentDoc) string {
	var sb strings.Builder
	sb.WriteString(Anchor(doc.ID) + "\n")
	fmt.Fprintf(&sb, "## %s\n\n", componentTitle(doc))
	fmt.Fprintf(&sb, "`%s`\n\n", g.rel(doc.Filepath))
	if doc.Description != "" {
		sb.WriteString(doc.Description + "\n\n")
	}
	if kw := doc.Entries.Filter(entry.KindKeywords); len(kw) > 0 {
		for _, k := range kw[0].Meta().Keywords {
			fmt.Fprintf(&sb, "- **@%s** %s\n", k.Name, k.Description)
		}
		sb.WriteString("\n")
	}

	renderProps(&sb, doc.Entries.Filter(entry.KindProp))
	renderData(&sb, doc.Entries.Filter(entry.KindData))
	renderComputed(&sb, doc.Entries.Filter(entry.KindComputed))
	renderMethods(&sb, doc.Entries.Filter(entry.KindMethod))
	renderEvents(&sb, doc.Entries.Filter(entry.KindEvent))
	renderSlots(&sb, doc.Entries.Filter(entry.KindSlot))
	renderModels(&sb, doc.Entries.Filter(entry.KindModel))
	g.renderMessages(&sb, doc.Messages)
	return sb.String()
}

func componentTitle(doc *extractor.ComponentDoc) string {
	if doc.Name != "" {
		return doc.Name
	}
	return filepath.Base(doc.Filepath)
}

func renderProps(sb *strings.Builder, props entry.List) {
	if len(props) == 0 {
		return
	}
	sb.WriteString("### Props\n\n")
	sb.WriteString("| Name | Type | Default | Required | Description |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, e := range props {
		p := e.(*entry.Prop)
		name := p.Name
		if p.DescribeModel {
			name += " (v-model)"
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s | %s |\n",
			name, code(p.Type.String()), code(p.Default), yesNo(p.Required), cell(p.Description))
	}
	sb.WriteString("\n")
}

func renderData(sb *strings.Builder, data entry.List) {
	if len(data) == 0 {
		return
	}
	sb.WriteString("### Data\n\n")
	sb.WriteString("| Name | Type | Initial value | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, e := range data {
		d := e.(*entry.Data)
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n",
			d.Name, code(d.Type.String()), code(d.InitialValue), cell(d.Description))
	}
	sb.WriteString("\n")
}

func renderComputed(sb *strings.Builder, computed entry.List) {
	if len(computed) == 0 {
		return
	}
	sb.WriteString("### Computed\n\n")
	sb.WriteString("| Name | Type | Dependencies | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, e := range computed {
		c := e.(*entry.Computed)
		deps := make([]string, len(c.Dependencies))
		for i, d := range c.Dependencies {
			deps[i] = "`" + d + "`"
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n",
			c.Name, code(c.Type.String()), strings.Join(deps, ", "), cell(c.Description))
	}
	sb.WriteString("\n")
}

func renderMethods(sb *strings.Builder, methods entry.List) {
	if len(methods) == 0 {
		return
	}
	sb.WriteString("### Methods\n\n")
	for _, e := range methods {
		m := e.(*entry.Method)
		fmt.Fprintf(sb, "#### %s\n\n", m.Name)
		if len(m.Syntax) > 0 {
			sb.WriteString("```ts\n" + strings.Join(m.Syntax, "\n") + "\n```\n\n")
		}
		if m.Description != "" {
			sb.WriteString(m.Description + "\n\n")
		}
		renderParams(sb, "Parameters", m.Params)
		if !m.Returns.Type.IsUnknown() || m.Returns.Description != "" {
			fmt.Fprintf(sb, "Returns %s %s\n\n", code(m.Returns.Type.String()), m.Returns.Description)
		}
	}
}

func renderEvents(sb *strings.Builder, events entry.List) {
	if len(events) == 0 {
		return
	}
	sb.WriteString("### Events\n\n")
	for _, e := range events {
		ev := e.(*entry.Event)
		fmt.Fprintf(sb, "#### %s\n\n", ev.Name)
		if len(ev.Syntax) > 0 {
			sb.WriteString("```ts\n" + strings.Join(ev.Syntax, "\n") + "\n```\n\n")
		}
		if ev.Description != "" {
			sb.WriteString(ev.Description + "\n\n")
		}
		renderParams(sb, "Arguments", ev.Arguments)
	}
}

func renderSlots(sb *strings.Builder, slots entry.List) {
	if len(slots) == 0 {
		return
	}
	sb.WriteString("### Slots\n\n")
	for _, e := range slots {
		s := e.(*entry.Slot)
		fmt.Fprintf(sb, "- `%s` %s\n", s.Name, s.Description)
		for _, p := range s.Props {
			fmt.Fprintf(sb, "  - `%s` %s %s\n", p.Name, code(p.Type.String()), p.Description)
		}
	}
	sb.WriteString("\n")
}

func renderModels(sb *strings.Builder, models entry.List) {
	if len(models) == 0 {
		return
	}
	sb.WriteString("### Model\n\n")
	for _, e := range models {
		m := e.(*entry.Model)
		fmt.Fprintf(sb, "- prop `%s`, event `%s` %s\n", m.Prop, m.Event, m.Description)
	}
	sb.WriteString("\n")
}

func renderParams(sb *strings.Builder, title string, params []entry.Param) {
	if len(params) == 0 {
		return
	}
	fmt.Fprintf(sb, "| %s | Type | Description |\n", title)
	sb.WriteString("|---|---|---|\n")
	for _, p := range params {
		name := p.Name
		switch {
		case p.Rest:
			name = "..." + name
		case p.Optional:
			name += "?"
		}
		if p.Default != "" {
			name += " = " + p.Default
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s |\n", name, code(p.Type.String()), cell(p.Description))
	}
	sb.WriteString("\n")
}

func (g *MarkdownGenerator) renderMessages(sb *strings.Builder, messages []script.Message) {
	if len(messages) == 0 {
		return
	}
	sb.WriteString("### Diagnostics\n\n")
	for _, m := range messages {
		loc := g.rel(m.File)
		if m.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, m.Line)
		}
		fmt.Fprintf(sb, "- **%s** `%s` %s\n", m.Level, loc, m.Text)
	}
	sb.WriteString("\n")
}

func (g *MarkdownGenerator) rel(path string) string {
	if g.root == "" {
		return filepath.ToSlash(path)
	}
	if r, err := filepath.Rel(g.root, path); err == nil && !strings.HasPrefix(r, "..") {
		return filepath.ToSlash(r)
	}
	return filepath.ToSlash(path)
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + strings.ReplaceAll(s, "|", "\\|") + "`"
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "<br>")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
