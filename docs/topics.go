// Package docs embeds the irtax documentation topics.
package docs

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
)

//go:embed *.md
var files embed.FS

// index is the topic list of readme.md, one "* name: synopsis" per line.
var index = regexp.MustCompile(`^\*\s+([^:\s]+):\s*(.*)$`)

// Topic is a documentation topic listed in the readme.
type Topic struct {
	Name     string
	Synopsis string
}

// Index returns the topics listed in the readme, in order.
func Index() ([]Topic, error) {
	readme, err := files.ReadFile("readme.md")
	if err != nil {
		return nil, err
	}
	var topics []Topic
	scanner := bufio.NewScanner(strings.NewReader(string(readme)))
	for scanner.Scan() {
		if m := index.FindStringSubmatch(scanner.Text()); m != nil {
			topics = append(topics, Topic{Name: m[1], Synopsis: m[2]})
		}
	}
	return topics, scanner.Err()
}

// GetTopic returns the content of a documentation topic.
func GetTopic(topic string) (string, error) {
	content, err := files.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found, see 'irtax topic' for the list", topic)
	}
	return string(content), nil
}

// GetTopics returns the content of several topics, "*" stands for all of them.
func GetTopics(topics ...string) (string, error) {
	var b strings.Builder
	for _, topic := range topics {
		names := []string{topic}
		if topic == "*" {
			all, err := GetAllTopics()
			if err != nil {
				return "", err
			}
			names = all
		}
		for _, name := range names {
			content, err := GetTopic(name)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// GetAllTopics returns the names of the embedded topics, the readme excluded.
func GetAllTopics() ([]string, error) {
	entries, err := fs.Glob(files, "*.md")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, e := range entries {
		if name := strings.TrimSuffix(e, ".md"); name != "readme" {
			topics = append(topics, name)
		}
	}
	slices.Sort(topics)
	return topics, nil
}
