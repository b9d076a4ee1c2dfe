package cli

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/faceaug/pkg/errors"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Dataset listing
// =============================================================================

// datasetFile is one image of a generated directory.
type datasetFile struct {
	Name    string
	Image   int // -1 when the name is not "{image}_{variant}.ext"
	Variant int
	Size    int64
	ModTime time.Time
}

// datasetSummary aggregates a generated directory.
type datasetSummary struct {
	Files     int
	Images    int
	Originals int
	Bytes     int64
}

// scanDataset lists the image files of dir in name order.
func scanDataset(dir string) ([]datasetFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "directory %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", dir)
	}
	var files []datasetFile
	for _, e := range entries {
		if !e.Type().IsRegular() || errors.ValidateImageName(e.Name()) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		img, variant := parseFileName(e.Name())
		files = append(files, datasetFile{
			Name:    e.Name(),
			Image:   img,
			Variant: variant,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// parseFileName splits "{image:06d}_{variant:03d}.ext". Other names give
// (-1, -1).
func parseFileName(name string) (int, int) {
	var img, variant int
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if n, err := fmt.Sscanf(stem, "%d_%d", &img, &variant); err != nil || n != 2 {
		return -1, -1
	}
	return img, variant
}

func summarize(files []datasetFile) datasetSummary {
	s := datasetSummary{Files: len(files)}
	seen := make(map[int]bool)
	for _, f := range files {
		s.Bytes += f.Size
		if f.Image < 0 {
			continue
		}
		if !seen[f.Image] {
			seen[f.Image] = true
			s.Images++
		}
		if f.Variant == 0 {
			s.Originals++
		}
	}
	return s
}

// =============================================================================
// DatasetModel - Interactive dataset browser
// =============================================================================

// DatasetModel is the bubbletea model of "faceaug inspect".
type DatasetModel struct {
	Dir    string
	Files  []datasetFile
	Cursor int
	Height int
	Offset int

	// dims caches decoded image headers by file name.
	dims map[string]string
}

// NewDatasetModel creates a browser over the files of dir.
func NewDatasetModel(dir string, files []datasetFile) DatasetModel {
	return DatasetModel{
		Dir:    dir,
		Files:  files,
		Height: 15,
		dims:   make(map[string]string),
	}
}

func (m DatasetModel) Init() tea.Cmd {
	return nil
}

func (m DatasetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "n":
			m.jumpImage(1)
		case "p":
			m.jumpImage(-1)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m.scroll()
	}
	return m, nil
}

func (m *DatasetModel) move(delta int) {
	m.Cursor += delta
	if m.Cursor >= len(m.Files) {
		m.Cursor = len(m.Files) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.scroll()
}

// jumpImage moves the cursor to the first file of the next (dir > 0) or
// previous source image.
func (m *DatasetModel) jumpImage(dir int) {
	if len(m.Files) == 0 {
		return
	}
	current := m.Files[m.Cursor].Image
	if dir > 0 {
		for i := m.Cursor + 1; i < len(m.Files); i++ {
			if m.Files[i].Image != current {
				m.Cursor = i
				break
			}
		}
	} else {
		i := m.Cursor
		for i > 0 && m.Files[i-1].Image == current {
			i--
		}
		if i > 0 {
			prev := m.Files[i-1].Image
			for i > 0 && m.Files[i-1].Image == prev {
				i--
			}
		}
		m.Cursor = i
	}
	m.scroll()
}

func (m *DatasetModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// dimensions returns "WxH format" for the file, decoding only its header.
func (m DatasetModel) dimensions(name string) string {
	if d, ok := m.dims[name]; ok {
		return d
	}
	d := "unreadable"
	if f, err := os.Open(filepath.Join(m.Dir, name)); err == nil {
		if cfg, format, err := image.DecodeConfig(f); err == nil {
			d = fmt.Sprintf("%dx%d %s", cfg.Width, cfg.Height, format)
		}
		f.Close()
	}
	if m.dims != nil {
		m.dims[name] = d
	}
	return d
}

func (m DatasetModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dataset " + m.Dir))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  n/p next/prev image  q quit"))
	b.WriteString("\n\n")

	if len(m.Files) == 0 {
		b.WriteString(listDimStyle.Render("  no images"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Files))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		f := m.Files[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		img, variant := "—", "—"
		if f.Image >= 0 {
			img = fmt.Sprintf("%d", f.Image)
			variant = fmt.Sprintf("%d", f.Variant)
			if f.Variant == 0 {
				variant = "original"
			}
		}
		rows = append(rows, []string{cursor, f.Name, img, variant, humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "File", "Image", "Variant", "Size", "Written").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Files) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if m.Files[idx].Variant == 0 {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	current := m.Files[m.Cursor]
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s  %s", current.Name, m.dimensions(current.Name))))
	b.WriteString("\n")

	s := summarize(m.Files)
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d images  %s",
		m.Cursor+1, len(m.Files), s.Images, humanize.Bytes(uint64(s.Bytes)))))

	return b.String()
}
