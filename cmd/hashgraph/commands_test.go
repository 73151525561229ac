package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanonone/hashgraph/pkg/analysis"
	"github.com/sanonone/hashgraph/pkg/post"
)

func TestTrimExt(t *testing.T) {
	tests := map[string]string{
		"pro.table.json": "pro",
		"records.jsonl":  "records",
		"plain":          "plain",
	}
	for in, want := range tests {
		if got := trimExt(in); got != want {
			t.Errorf("trimExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildThenStats(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "pro.jsonl")
	f, err := os.Create(input)
	if err != nil {
		t.Fatal(err)
	}
	err = post.WriteJSONL(f, []post.Record{
		{Actor: "A", MentionedActors: []string{"B"}},
		{Actor: "B", ResharedFromActor: "A"},
		{Actor: ""},
	})
	f.Close()
	if err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "hashgraph.yaml")
	cfgYAML := "data_dir: " + filepath.Join(dir, "data") + "\noutput_dir: " + filepath.Join(dir, "out") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"build", input, "--config", cfgPath, "--log-level", "error"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	var built struct {
		Graph    string `json:"graph"`
		Rejected int    `json:"rejected"`
		Nodes    int    `json:"nodes"`
		Edges    int    `json:"edges"`
	}
	if err := json.Unmarshal(out.Bytes(), &built); err != nil {
		t.Fatalf("build output: %v\n%s", err, out.String())
	}
	if built.Graph != "pro" || built.Rejected != 1 || built.Nodes != 2 || built.Edges != 2 {
		t.Errorf("build result: %+v", built)
	}

	out.Reset()
	table := filepath.Join(dir, "data", "pro.table.json")
	dot := filepath.Join(dir, "pro.dot")
	rootCmd.SetArgs([]string{"stats", table, "--config", cfgPath, "--top", "1", "--dot", dot})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	var stats struct {
		Report struct {
			Nodes       int     `json:"nodes"`
			Reciprocity float64 `json:"reciprocity"`
		} `json:"report"`
		Top []struct {
			Handle string `json:"handle"`
		} `json:"top"`
	}
	if err := json.Unmarshal(out.Bytes(), &stats); err != nil {
		t.Fatalf("stats output: %v\n%s", err, out.String())
	}
	if stats.Report.Nodes != 2 || len(stats.Top) != 1 {
		t.Errorf("stats: %+v", stats)
	}
	if _, err := os.Stat(dot); err != nil {
		t.Errorf("dot file not written: %v", err)
	}
}

func TestBuildFromCSVAndFlagChecks(t *testing.T) {
	t.Cleanup(func() {
		graphName = ""
		rankBy = string(analysis.MetricPageRank)
	})
	dir := t.TempDir()
	input := filepath.Join(dir, "antiTweets.csv")
	f, err := os.Create(input)
	if err != nil {
		t.Fatal(err)
	}
	err = post.WriteCSV(f, []post.Record{
		{Actor: "X", MentionedActors: []string{"Y", "Z"}},
		{Actor: "Y", ResharedFromActor: "X"},
	})
	f.Close()
	if err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "hashgraph.yaml")
	dataDir := filepath.Join(dir, "data")
	cfgYAML := "data_dir: " + dataDir + "\noutput_dir: " + filepath.Join(dir, "out") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	rootCmd.SetArgs([]string{"build", input, "--config", cfgPath, "--log-level", "error", "--name", "../escape"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("a graph name with a path separator should be rejected")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.graphlog")); !os.IsNotExist(err) {
		t.Errorf("nothing should be written outside the data dir: %v", err)
	}

	out.Reset()
	rootCmd.SetArgs([]string{"build", input, "--config", cfgPath, "--log-level", "error", "--name", "anti"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	var built struct {
		Graph string `json:"graph"`
		Nodes int    `json:"nodes"`
		Edges int    `json:"edges"`
	}
	if err := json.Unmarshal(out.Bytes(), &built); err != nil {
		t.Fatalf("build output: %v\n%s", err, out.String())
	}
	if built.Graph != "anti" || built.Nodes != 3 || built.Edges != 3 {
		t.Errorf("build result: %+v", built)
	}

	table := filepath.Join(dataDir, "anti.table.json")
	rootCmd.SetArgs([]string{"stats", table, "--config", cfgPath, "--by", "karma"})
	if err := rootCmd.Execute(); !errors.Is(err, analysis.ErrUnknownMetric) {
		t.Errorf("expected ErrUnknownMetric, got %v", err)
	}
}
