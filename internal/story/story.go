// Package story compiles a .biff interactive story into content pages, one
// Markdown file per knot and state combination.
package story

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/verkaro/bigif/bigif"
	"github.com/verkaro/editml-go"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/verkaro/nibl/internal/config"
	"github.com/verkaro/nibl/internal/logging"
)

var (
	knotHeader   = regexp.MustCompile(`^\s*===\s*([\w-]+)\s*===\s*$`)
	unsafeChars  = regexp.MustCompile(`[^\w- ]+`)
	repeatDashes = regexp.MustCompile(`-+`)
)

// knotComments collects "// key: value" comments that follow each knot
// header. Keys are lower-cased.
func knotComments(biff []byte) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	var knot string

	scanner := bufio.NewScanner(bytes.NewReader(biff))
	for scanner.Scan() {
		line := strings.TrimFunc(scanner.Text(), unicode.IsSpace)

		if m := knotHeader.FindStringSubmatch(line); len(m) > 1 {
			knot = m[1]
			if out[knot] == nil {
				out[knot] = make(map[string]string)
			}
			continue
		}
		if knot == "" || !strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "//")), ":")
		if !ok {
			continue
		}
		out[knot][strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// cleanKnotBody resolves EditML markup into plain Markdown.
func cleanKnotBody(raw string) (string, error) {
	nodes, issues := editml.Parse(raw)
	if len(issues) > 0 && issues[0].Severity == editml.SeverityError {
		return "", errors.Newf("editml parsing error: %s", issues[0].Message)
	}
	clean, issues := editml.TransformCleanView(nodes)
	if len(issues) > 0 && issues[0].Severity == editml.SeverityError {
		return "", errors.Newf("editml transformation error: %s", issues[0].Message)
	}
	return clean, nil
}

// splitTitle picks the page title (comment title, then first "# " heading,
// then the knot name) and returns the body without that heading.
func splitTitle(knotName, content string, meta map[string]string) (string, string) {
	title := meta["title"]
	var heading string
	var lines []string

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimFunc(line, unicode.IsSpace)
		if strings.HasPrefix(trimmed, "# ") {
			if heading == "" {
				heading = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			}
			continue
		}
		lines = append(lines, line)
	}
	body := strings.TrimSpace(strings.Join(lines, "\n"))

	switch {
	case title != "":
	case heading != "":
		title = heading
	default:
		title = cases.Title(language.Und).String(strings.ReplaceAll(knotName, "_", " "))
	}
	return title, body
}

type compiledStory struct {
	Metadata map[string]string `json:"metadata"`
	Graph    struct {
		Nodes map[string]*bigif.StoryNode `json:"nodes"`
	} `json:"graph"`
}

// Compile turns the story at biffPath into Markdown pages under contentDir
// and returns how many pages it wrote.
func Compile(biffPath, contentDir string, siteCfg config.SiteConfig) (int, error) {
	logger := logging.GetLogger("story")

	biff, err := os.ReadFile(biffPath)
	if err != nil {
		return 0, err
	}
	comments, err := knotComments(biff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to pre-parse biff for front matter")
	}

	compiled, err := bigif.Compile(string(biff))
	if err != nil {
		return 0, errors.Wrap(err, "biff syntax error")
	}
	var st compiledStory
	if err := json.Unmarshal(compiled, &st); err != nil {
		return 0, errors.Wrap(err, "internal error: failed to unmarshal story json")
	}

	paths := nodePaths(st.Graph.Nodes, contentDir)
	ids := make([]string, 0, len(st.Graph.Nodes))
	for id := range st.Graph.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		node := st.Graph.Nodes[id]
		page, err := renderKnot(node, paths[id], st.Metadata, comments[node.KnotName], paths)
		if err != nil {
			return 0, errors.Wrapf(err, "knot %s", node.KnotName)
		}
		target := paths[id]
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return 0, errors.Wrap(err, "failed to create directory for story file")
		}
		if err := os.WriteFile(target, page, 0644); err != nil {
			return 0, errors.Wrapf(err, "failed to write story file %s", target)
		}
		logger.Trace().Str("knot", node.KnotName).Str("path", target).Msg("Wrote knot")
	}
	logger.Debug().Int("knots", len(ids)).Str("site", siteCfg.Title).Msg("Compiled story")
	return len(ids), nil
}

func renderKnot(node *bigif.StoryNode, self string, storyMeta, knotMeta map[string]string, paths map[string]string) ([]byte, error) {
	title, raw := splitTitle(node.KnotName, node.Content, knotMeta)
	body, err := cleanKnotBody(raw)
	if err != nil {
		return nil, err
	}
	fm, err := knotFrontMatter(title, storyMeta, knotMeta)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	fmt.Fprintf(&buf, "## %s\n\n%s\n\n", title, body)

	for _, edge := range node.Edges {
		rel, err := filepath.Rel(filepath.Dir(self), paths[edge.TargetNodeID])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "* [%s](%s)\n", edge.Text, filepath.ToSlash(rel))
	}
	return buf.Bytes(), nil
}

// knotFrontMatter encodes the page front matter in a stable key order:
// title, story fields, comment keys sorted, then draft.
func knotFrontMatter(title string, storyMeta, knotMeta map[string]string) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	str := func(s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
	}

	add("title", str(title))
	if v, ok := storyMeta["title"]; ok {
		add("story_title", str(v))
	}
	if v, ok := storyMeta["author"]; ok {
		add("story_author", str(v))
	}
	keys := make([]string, 0, len(knotMeta))
	for k := range knotMeta {
		if k != "title" && k != "draft" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, str(knotMeta[k]))
	}
	add("draft", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"})

	return yaml.Marshal(doc)
}

// nodePaths maps each node id to its output file: the scene directories,
// then the knot name joined with the sorted true state flags.
func nodePaths(nodes map[string]*bigif.StoryNode, outDir string) map[string]string {
	paths := make(map[string]string, len(nodes))
	for id, node := range nodes {
		dirs := []string{outDir}
		if node.Scene != "" {
			for _, seg := range strings.Split(node.Scene, "/") {
				dirs = append(dirs, sanitize(seg))
			}
		}
		var flags []string
		for k, v := range node.State {
			if v {
				flags = append(flags, sanitize(k))
			}
		}
		sort.Strings(flags)
		name := strings.Join(append([]string{sanitize(node.KnotName)}, flags...), "-") + ".md"
		paths[id] = filepath.Join(append(dirs, name)...)
	}
	return paths
}

func sanitize(s string) string {
	s = strings.ToLower(s)
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	return repeatDashes.ReplaceAllString(s, "-")
}
