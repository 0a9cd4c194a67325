package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// Outline reads the EPUB's NCX table of contents and points each entry at
// the first token of the spine item it references. Entries whose target
// produced no text are dropped.
func (f *EPUBFormat) Outline(filename string, tokens []Token) ([]OutlineEntry, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	book := rc.Rootfiles[0]

	ncxData, err := findAndReadNCX(filename, book)
	if err != nil {
		return nil, err
	}

	var toc ncx
	if err := xml.Unmarshal(ncxData, &toc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}

	return flattenNavPoints(toc.NavMap.NavPoints, spineSections(book), sectionStarts(tokens), tokens, 0), nil
}

// spineSections maps spine hrefs, full and base name, to the section
// number EPUBFormat.Extract gives that item.
func spineSections(book *epub.Rootfile) map[string]int {
	m := make(map[string]int)
	for i, ref := range book.Spine.Itemrefs {
		if ref.Item == nil || ref.Item.HREF == "" {
			continue
		}
		m[ref.Item.HREF] = i + 1
		m[path.Base(ref.Item.HREF)] = i + 1
	}
	return m
}

func findAndReadNCX(filename string, book *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no NCX file found in EPUB")
	}

	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) || path.Base(f.Name) == path.Base(ncxPath) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}

	return nil, fmt.Errorf("NCX file %s not found in archive", ncxPath)
}

func flattenNavPoints(points []navPoint, sections map[string]int, starts map[int]int, tokens []Token, level int) []OutlineEntry {
	var entries []OutlineEntry

	for _, np := range points {
		href, _, _ := strings.Cut(np.Content.Src, "#")

		section, ok := sections[href]
		if !ok {
			section, ok = sections[path.Base(href)]
		}
		if index, found := starts[section]; ok && found {
			entries = append(entries, OutlineEntry{
				Title:   strings.TrimSpace(np.Label.Text),
				Index:   index,
				Level:   level,
				Preview: preview(tokens, index),
			})
		}
		entries = append(entries, flattenNavPoints(np.Children, sections, starts, tokens, level+1)...)
	}

	return entries
}
