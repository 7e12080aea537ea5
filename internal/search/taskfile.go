// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

// TaskFile is the on-disk representation of generated search tasks. The
// manual workflow saves query generation output to a file and feeds it to
// the search stage later without re-prompting the model.
type TaskFile struct {
	Plan    string             `yaml:"plan,omitempty"`
	Tasks   []types.SearchTask `yaml:"tasks"`
	Summary TaskFileSummary    `yaml:"summary"`
}

// TaskFileSummary stores task statistics and a timestamp.
type TaskFileSummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// ResultFile is the on-disk representation of completed search tasks, the
// handoff between the search stage and final report writing.
type ResultFile struct {
	Plan    string                      `yaml:"plan,omitempty"`
	Results []types.CompletedSearchTask `yaml:"results"`
	Summary TaskFileSummary             `yaml:"summary"`
}

// WriteTaskFile saves the plan and generated tasks to a YAML file.
func WriteTaskFile(path, plan string, tasks []types.SearchTask) error {
	tf := TaskFile{
		Plan:  plan,
		Tasks: tasks,
		Summary: TaskFileSummary{
			Total:     len(tasks),
			Timestamp: time.Now(),
		},
	}
	data, err := yaml.Marshal(&tf)
	if err != nil {
		return fmt.Errorf("marshaling task file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadTaskFile loads a previously saved task file from disk.
func ReadTaskFile(path string) (*TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}
	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing task file: %w", err)
	}
	return &tf, nil
}

// WriteResultFile saves completed search tasks to a YAML file.
func WriteResultFile(path, plan string, results []types.CompletedSearchTask) error {
	rf := ResultFile{
		Plan:    plan,
		Results: results,
		Summary: TaskFileSummary{
			Total:     len(results),
			Timestamp: time.Now(),
		},
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
