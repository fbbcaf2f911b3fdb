// Package runner evaluates a corpus of Cypher queries against a schema.
//
// A corpus is a directory of YAML files, each declaring a named group of
// queries with optional expectations. The runner validates every query,
// checks it against its expectation (a simple expect_valid flag or an expr
// assertion over the validation outcome), and tallies the results.
package runner

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/boyter/gocodewalker"
	"github.com/expr-lang/expr"
	"gopkg.in/yaml.v3"

	cypherguard "github.com/neo4j-field/cypher-guard"
	"github.com/neo4j-field/cypher-guard/analysis"
	"github.com/neo4j-field/cypher-guard/schema"
)

// QueryFile is one YAML corpus file.
type QueryFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Category    string      `yaml:"category"`
	Queries     []QueryCase `yaml:"queries"`
}

// QueryCase is a single query with its expectation. When Assert is set it is
// compiled as an expr boolean over the evaluation environment; otherwise
// ExpectValid (default true) is compared against the validation outcome.
type QueryCase struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Cypher      string `yaml:"cypher"`
	ExpectValid *bool  `yaml:"expect_valid"`
	Assert      string `yaml:"assert"`
}

// AssertEnv is the environment an Assert expression is evaluated against.
type AssertEnv struct {
	Valid       bool     `expr:"valid"`
	Write       bool     `expr:"write"`
	ParseError  bool     `expr:"parse_error"`
	Diagnostics []string `expr:"diagnostics"`
}

// CaseResult is the outcome of one query.
type CaseResult struct {
	File        string                `json:"file"`
	Group       string                `json:"group"`
	Name        string                `json:"name"`
	Cypher      string                `json:"cypher"`
	Valid       bool                  `json:"valid"`
	Write       bool                  `json:"write"`
	ParseError  string                `json:"parse_error,omitempty"`
	Diagnostics []analysis.Diagnostic `json:"diagnostics,omitempty"`
	Passed      bool                  `json:"passed"`
	Failure     string                `json:"failure,omitempty"`
}

// Stats aggregates a run.
type Stats struct {
	Files       int `json:"files"`
	Queries     int `json:"queries"`
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	ParseErrors int `json:"parse_errors"`
}

// Accuracy is the passed fraction as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Queries == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Queries) * 100
}

// Result is the full outcome of a run.
type Result struct {
	Cases []CaseResult `json:"cases"`
	Stats Stats        `json:"stats"`
}

// Failed returns only the failing cases.
func (r *Result) Failed() []CaseResult {
	var out []CaseResult
	for _, c := range r.Cases {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// Runner validates corpus queries against one schema.
type Runner struct {
	Schema *schema.Schema
}

// New creates a runner for the given schema.
func New(s *schema.Schema) *Runner {
	return &Runner{Schema: s}
}

// RunDir walks root for .yaml/.yml corpus files (respecting .gitignore) and
// evaluates every query found. Files are processed in path order so results
// are deterministic.
func (r *Runner) RunDir(root string) (*Result, error) {
	files, err := collectCorpusFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("runner: no query files found under %s", root)
	}
	return r.RunFiles(files)
}

// RunFiles evaluates the given corpus files.
func (r *Runner) RunFiles(paths []string) (*Result, error) {
	result := &Result{}

	for _, path := range paths {
		qf, err := LoadQueryFile(path)
		if err != nil {
			return nil, err
		}
		result.Stats.Files++
		for _, qc := range qf.Queries {
			res := r.evaluate(path, qf, qc)
			result.Cases = append(result.Cases, res)
			result.Stats.Queries++
			if res.Passed {
				result.Stats.Passed++
			} else {
				result.Stats.Failed++
			}
			if res.ParseError != "" {
				result.Stats.ParseErrors++
			}
		}
	}

	return result, nil
}

// LoadQueryFile parses one YAML corpus file.
func LoadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runner: reading %s: %w", path, err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("runner: parsing %s: %w", path, err)
	}
	return &qf, nil
}

func (r *Runner) evaluate(path string, qf *QueryFile, qc QueryCase) CaseResult {
	res := CaseResult{
		File:   path,
		Group:  qf.Name,
		Name:   qc.Name,
		Cypher: qc.Cypher,
	}

	diags, err := cypherguard.Validate(qc.Cypher, r.Schema)
	if err != nil {
		res.ParseError = err.Error()
	} else {
		res.Diagnostics = diags
		res.Valid = len(diags) == 0
		if write, werr := cypherguard.IsWrite(qc.Cypher); werr == nil {
			res.Write = write
		}
	}

	if qc.Assert != "" {
		res.Passed, res.Failure = runAssert(qc.Assert, res)
		return res
	}

	expected := true
	if qc.ExpectValid != nil {
		expected = *qc.ExpectValid
	}
	res.Passed = res.Valid == expected && (res.ParseError == "" || !expected)
	if !res.Passed {
		res.Failure = fmt.Sprintf("expected valid=%v, got valid=%v", expected, res.Valid)
		if res.ParseError != "" {
			res.Failure = "parse error: " + res.ParseError
		}
	}
	return res
}

func runAssert(src string, res CaseResult) (bool, string) {
	env := AssertEnv{
		Valid:      res.Valid,
		Write:      res.Write,
		ParseError: res.ParseError != "",
	}
	for _, d := range res.Diagnostics {
		env.Diagnostics = append(env.Diagnostics, string(d.Kind))
	}

	program, err := expr.Compile(src, expr.Env(AssertEnv{}), expr.AsBool())
	if err != nil {
		return false, fmt.Sprintf("assert compile error: %v", err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Sprintf("assert runtime error: %v", err)
	}
	passed, _ := out.(bool)
	if !passed {
		return false, fmt.Sprintf("assert %q failed", src)
	}
	return true, ""
}

// collectCorpusFiles walks root for YAML files, respecting .gitignore.
func collectCorpusFiles(root string) ([]string, error) {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = []string{"yaml", "yml"}

	var walkErr error
	fileWalker.SetErrorHandler(func(e error) bool {
		walkErr = e
		return true
	})

	var files []string
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for f := range fileListQueue {
			files = append(files, f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return nil, err
	}
	wg.Wait()
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(files)
	return files, nil
}

// Categories returns the distinct categories seen across files, sorted.
func Categories(files []*QueryFile) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range files {
		cat := strings.TrimSpace(f.Category)
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
