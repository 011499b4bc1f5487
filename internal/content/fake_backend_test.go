package content

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/routemap"
)

type fakeBackend struct {
	mu sync.Mutex

	databasePages [][]notion.Page
	queryErr      error

	pages   map[string]notion.Page
	pageErr error

	children map[string][]notion.Block
	pageSize int
	delay    time.Duration

	retrieveStarted chan struct{}
	retrieveGate    chan struct{}

	calls       map[string]int
	inFlight    int
	maxInFlight int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		pages:    make(map[string]notion.Page),
		children: make(map[string][]notion.Block),
		calls:    make(map[string]int),
	}
}

func (f *fakeBackend) QueryDatabase(ctx context.Context, databaseID string, cursor string) (notion.PageList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["query"]++
	if f.queryErr != nil {
		return notion.PageList{}, f.queryErr
	}
	index := 0
	if cursor != "" {
		index, _ = strconv.Atoi(cursor)
	}
	if index >= len(f.databasePages) {
		return notion.PageList{}, nil
	}
	list := notion.PageList{Results: f.databasePages[index]}
	if index+1 < len(f.databasePages) {
		list.HasMore = true
		list.NextCursor = strconv.Itoa(index + 1)
	}
	return list, nil
}

func (f *fakeBackend) RetrievePage(ctx context.Context, pageID string) (notion.Page, error) {
	f.mu.Lock()
	f.calls["page:"+notion.CompactID(pageID)]++
	started, gate := f.retrieveStarted, f.retrieveGate
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return notion.Page{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pageErr != nil {
		return notion.Page{}, f.pageErr
	}
	page, ok := f.pages[notion.CompactID(pageID)]
	if !ok {
		return notion.Page{}, &notion.APIError{Status: 404, Code: "object_not_found"}
	}
	return page, nil
}

func (f *fakeBackend) ListBlockChildren(ctx context.Context, blockID string, cursor string) (notion.BlockList, error) {
	f.mu.Lock()
	f.calls["children:"+notion.CompactID(blockID)]++
	f.calls["children"]++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--

	all := f.children[notion.CompactID(blockID)]
	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	end := len(all)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}
	list := notion.BlockList{Results: append([]notion.Block(nil), all[start:end]...)}
	if end < len(all) {
		list.HasMore = true
		list.NextCursor = strconv.Itoa(end)
	}
	return list, nil
}

func (f *fakeBackend) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeBackend) setPage(page notion.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[notion.CompactID(page.ID)] = page
}

func (f *fakeBackend) setPageErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageErr = err
}

type memoryStore struct {
	entries []routemap.Entry
	err     error
}

func (m *memoryStore) Load(ctx context.Context) ([]routemap.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]routemap.Entry(nil), m.entries...), nil
}

func (m *memoryStore) Save(ctx context.Context, entries []routemap.Entry) error {
	m.entries = append([]routemap.Entry(nil), entries...)
	return nil
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(delta time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(delta)
}

var errBackendDown = errors.New("backend down")

func titleProperty(value string) notion.Property {
	return notion.Property{Type: "title", Title: []notion.RichText{{PlainText: value}}}
}

func textProperty(value string) notion.Property {
	return notion.Property{Type: "rich_text", RichText: []notion.RichText{{PlainText: value}}}
}

func checkboxProperty(value bool) notion.Property {
	return notion.Property{Type: "checkbox", Checkbox: &value}
}

func fullPage(id, lastEdited, title string) notion.Page {
	return notion.Page{
		Object:         "page",
		ID:             id,
		LastEditedTime: lastEdited,
		Properties:     map[string]notion.Property{"Name": titleProperty(title)},
	}
}

func paragraph(id, text string, hasChildren bool) notion.Block {
	return notion.Block{
		Object:      "block",
		ID:          id,
		Type:        notion.BlockTypeParagraph,
		HasChildren: hasChildren,
		Paragraph:   &notion.TextBlock{RichText: []notion.RichText{{PlainText: text}}},
	}
}

func childPage(id, title string) notion.Block {
	return notion.Block{
		Object:    "block",
		ID:        id,
		Type:      notion.BlockTypeChildPage,
		ChildPage: &notion.ChildPageBlock{Title: title},
	}
}

func blockIDs(blocks []notion.Block) []string {
	ids := make([]string, 0, len(blocks))
	for _, block := range blocks {
		ids = append(ids, block.ID)
	}
	return ids
}

func mustEqualStrings(label string, got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s: got %v want %v", label, got, want)
	}
	for index := range got {
		if got[index] != want[index] {
			return fmt.Errorf("%s: got %v want %v", label, got, want)
		}
	}
	return nil
}
