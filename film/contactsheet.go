package film

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

//go:embed templates/contact_sheet.html
var contactSheetTemplate string

var contactSheetTmpl = template.Must(template.New("contact_sheet").Parse(contactSheetTemplate))

// Frame is one captured still.
type Frame struct {
	Section  string
	Label    string
	Index    int           // item index shown in the frame
	Path     string        // PNG on disk
	DataURL  template.URL
	Terminal template.HTML // styled view from TerminalHTML, optional
}

// Sheet groups the frames of one deck.
type Sheet struct {
	Title       string
	GeneratedAt time.Time
	Sections    []SheetSection
}

// SheetSection is one carousel's strip of frames.
type SheetSection struct {
	Name   string
	Frames []Frame
}

// Add appends a frame to its section, creating the section on first use.
func (s *Sheet) Add(f Frame) {
	for i := range s.Sections {
		if s.Sections[i].Name == f.Section {
			s.Sections[i].Frames = append(s.Sections[i].Frames, f)
			return
		}
	}
	s.Sections = append(s.Sections, SheetSection{Name: f.Section, Frames: []Frame{f}})
}

// FrameCount returns the number of frames across sections.
func (s *Sheet) FrameCount() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Frames)
	}
	return n
}

// Write embeds every frame as a data URL and writes dir/index.html.
func (s *Sheet) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if s.GeneratedAt.IsZero() {
		s.GeneratedAt = time.Now()
	}

	for i := range s.Sections {
		for j := range s.Sections[i].Frames {
			f := &s.Sections[i].Frames[j]
			if f.DataURL != "" {
				continue
			}
			url, err := pngDataURL(f.Path)
			if err != nil {
				return "", err
			}
			f.DataURL = url
		}
	}

	path := filepath.Join(dir, "index.html")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := contactSheetTmpl.Execute(file, s); err != nil {
		return "", fmt.Errorf("failed to render contact sheet: %w", err)
	}
	return path, nil
}

func pngDataURL(path string) (template.URL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read frame: %w", err)
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data)), nil
}
