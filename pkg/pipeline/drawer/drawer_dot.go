// Package drawer renders the stage graph of a pipeline to a Graphviz DOT
// file, optionally coloured by each stage's share of the total run time.
package drawer

import (
	"io"
	"os"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	colors "gopkg.in/go-playground/colors.v1" //nolint

	"github.com/voxpipe/voxpipe/pkg/pipeline/measure"
)

// DotDrawer is a drawer that creates a DOT file with the pipeline graph.
type DotDrawer struct {
	graph       graph.Graph[string, string]
	stages      map[string]struct{}
	dotFileName string
}

// NewDotDrawer creates a new DOT drawer writing to fileName.
func NewDotDrawer(fileName string) *DotDrawer {
	return &DotDrawer{
		dotFileName: fileName,
		graph:       graph.New(graph.StringHash, graph.Directed()),
		stages:      make(map[string]struct{}),
	}
}

// AddStage adds a stage to the pipeline graph.
func (d *DotDrawer) AddStage(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", "box"))
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}
	d.stages[name] = struct{}{}

	return nil
}

// AddLink adds a link between a parent stage and a child stage.
func (d *DotDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// SetLabel annotates a stage vertex with run information.
func (d *DotDrawer) SetLabel(name, label string) error {
	_, properties, err := d.graph.VertexWithProperties(name)
	if err != nil {
		return errors.Wrapf(err, "unable to get vertex %s", name)
	}
	properties.Attributes["xlabel"] = label

	return nil
}

const maxRGB = 240

// AddMeasure colours every stage from blue (fastest) to red (slowest) based
// on its share of the elapsed time.
func (d *DotDrawer) AddMeasure(msr measure.Measure) error {
	var minElapsed, maxElapsed time.Duration
	first := true
	for name := range d.stages {
		mt := msr.GetMetric(name)
		if mt == nil {
			continue
		}
		elapsed := mt.Elapsed()
		if first || elapsed < minElapsed {
			minElapsed = elapsed
		}
		if first || elapsed > maxElapsed {
			maxElapsed = elapsed
		}
		first = false
	}
	if first {
		return nil
	}

	for name := range d.stages {
		mt := msr.GetMetric(name)
		if mt == nil {
			continue
		}
		fraction := 1.0
		if maxElapsed > minElapsed {
			fraction = float64(mt.Elapsed()-minElapsed) / float64(maxElapsed-minElapsed)
		}
		red := uint8(maxRGB * fraction)
		blue := uint8(maxRGB - maxRGB*fraction)
		col, err := colors.RGB(red, 0, blue) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		_, properties, err := d.graph.VertexWithProperties(name)
		if err != nil {
			return errors.Wrapf(err, "unable to get vertex %s", name)
		}
		properties.Attributes["color"] = col.ToHEX().String()
	}

	return nil
}

// Draw creates a DOT file with the pipeline graph.
func (d *DotDrawer) Draw() error {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to render dot file %s", d.dotFileName)
	}

	return nil
}

const dotTemplate = `strict digraph {
{{range $s := .Statements}}	"{{.Source}}"{{if .Target}} -> "{{.Target}}"{{else}} [ {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}}]{{end}};
{{end}}}
`

type statement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
}

type description struct {
	Statements []statement
}

func dot(g graph.Graph[string, string], w io.Writer) error {
	adjacencyMap, err := g.AdjacencyMap()
	if err != nil {
		return errors.Wrap(err, "unable to get adjacency map")
	}

	desc := description{}
	for vertex, adjacencies := range adjacencyMap {
		_, properties, err := g.VertexWithProperties(vertex)
		if err != nil {
			return errors.Wrapf(err, "unable to get vertex %s", vertex)
		}
		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceAttributes: properties.Attributes,
		})
		for adjacency := range adjacencies {
			desc.Statements = append(desc.Statements, statement{
				Source: vertex,
				Target: adjacency,
			})
		}
	}

	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "unable to parse template")
	}

	return tpl.Execute(w, desc)
}
