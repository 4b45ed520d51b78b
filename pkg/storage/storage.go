package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"gopkg.in/yaml.v3"
)

// Storage writes topics as YAML files under Dir, one directory per board.
type Storage struct {
	Dir string
}

func (s *Storage) SaveFile(filePath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

func (s *Storage) HasFile(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil || !os.IsNotExist(err)
}

// TopicPath returns where a topic of board with the given reid is stored.
func (s *Storage) TopicPath(board, reid string) string {
	return filepath.Join(s.Dir, board, reid+".yaml")
}

// SaveTopic writes t unless a file for its reid already exists.
func (s *Storage) SaveTopic(_ context.Context, t *models.Topic) (bool, error) {
	path := s.TopicPath(t.Board, t.Reid())
	if s.HasFile(path) {
		return false, nil
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return false, fmt.Errorf("failed to marshal topic %d: %w", t.ID, err)
	}
	if err := s.SaveFile(path, data); err != nil {
		return false, err
	}
	return true, nil
}

// ReadTopic loads a topic written by SaveTopic.
func (s *Storage) ReadTopic(board, reid string) (*models.Topic, error) {
	data, err := s.ReadFile(s.TopicPath(board, reid))
	if err != nil {
		return nil, err
	}
	t := &models.Topic{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to decode topic %s: %w", reid, err)
	}
	return t, nil
}
