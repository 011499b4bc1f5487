package notion

// BlockType enumerates the block variants the site knows how to render.
type BlockType string

const (
	BlockTypeHeading1         BlockType = "heading_1"
	BlockTypeHeading2         BlockType = "heading_2"
	BlockTypeHeading3         BlockType = "heading_3"
	BlockTypeParagraph        BlockType = "paragraph"
	BlockTypeQuote            BlockType = "quote"
	BlockTypeBulletedListItem BlockType = "bulleted_list_item"
	BlockTypeNumberedListItem BlockType = "numbered_list_item"
	BlockTypeToDo             BlockType = "to_do"
	BlockTypeToggle           BlockType = "toggle"
	BlockTypeCallout          BlockType = "callout"
	BlockTypeDivider          BlockType = "divider"
	BlockTypeCode             BlockType = "code"
	BlockTypeImage            BlockType = "image"
	BlockTypeBookmark         BlockType = "bookmark"
	BlockTypeEmbed            BlockType = "embed"
	BlockTypeChildPage        BlockType = "child_page"
)

const (
	FileTypeFile     = "file"
	FileTypeExternal = "external"
)

// Annotations carries the inline styling of a rich-text run.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color,omitempty"`
}

// RichText is one styled span of text.
type RichText struct {
	Type        string      `json:"type,omitempty"`
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations"`
}

// PlainText concatenates the visible text of all runs.
func PlainText(items []RichText) string {
	if len(items) == 0 {
		return ""
	}
	total := 0
	for _, item := range items {
		total += len(item.PlainText)
	}
	buffer := make([]byte, 0, total)
	for _, item := range items {
		buffer = append(buffer, item.PlainText...)
	}
	return string(buffer)
}

type TextBlock struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

type ToDoBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

type CalloutBlock struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

type CodeBlock struct {
	RichText []RichText `json:"rich_text"`
	Caption  []RichText `json:"caption,omitempty"`
	Language string     `json:"language"`
}

type FileRef struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

type ExternalRef struct {
	URL string `json:"url"`
}

// FileBlock describes media that is either hosted by the backend or linked externally.
type FileBlock struct {
	Type     string       `json:"type"`
	File     *FileRef     `json:"file,omitempty"`
	External *ExternalRef `json:"external,omitempty"`
	Caption  []RichText   `json:"caption,omitempty"`
}

// SourceURL returns the URL of the media regardless of where it is hosted.
func (f FileBlock) SourceURL() string {
	switch {
	case f.Type == FileTypeExternal && f.External != nil:
		return f.External.URL
	case f.Type == FileTypeFile && f.File != nil:
		return f.File.URL
	}
	return ""
}

type LinkBlock struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

type ChildPageBlock struct {
	Title string `json:"title"`
}

type EmptyBlock struct{}

// Block is one node of a page's content tree. Type selects which payload field is set.
// Children is filled in by the page resolver; the API never returns it inline.
type Block struct {
	Object         string    `json:"object,omitempty"`
	ID             string    `json:"id"`
	Type           BlockType `json:"type"`
	HasChildren    bool      `json:"has_children"`
	LastEditedTime string    `json:"last_edited_time,omitempty"`

	Heading1         *TextBlock      `json:"heading_1,omitempty"`
	Heading2         *TextBlock      `json:"heading_2,omitempty"`
	Heading3         *TextBlock      `json:"heading_3,omitempty"`
	Paragraph        *TextBlock      `json:"paragraph,omitempty"`
	Quote            *TextBlock      `json:"quote,omitempty"`
	BulletedListItem *TextBlock      `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextBlock      `json:"numbered_list_item,omitempty"`
	ToDo             *ToDoBlock      `json:"to_do,omitempty"`
	Toggle           *TextBlock      `json:"toggle,omitempty"`
	Callout          *CalloutBlock   `json:"callout,omitempty"`
	Divider          *EmptyBlock     `json:"divider,omitempty"`
	Code             *CodeBlock      `json:"code,omitempty"`
	Image            *FileBlock      `json:"image,omitempty"`
	Bookmark         *LinkBlock      `json:"bookmark,omitempty"`
	Embed            *LinkBlock      `json:"embed,omitempty"`
	ChildPage        *ChildPageBlock `json:"child_page,omitempty"`

	Children []Block `json:"children,omitempty"`
}

// IsFull reports whether the API returned a complete block object.
func (b Block) IsFull() bool {
	return b.ID != "" && b.Type != "" && (b.Object == "" || b.Object == "block")
}

// RichText returns the primary text runs of text-bearing blocks.
func (b Block) RichText() []RichText {
	switch b.Type {
	case BlockTypeHeading1:
		return textOf(b.Heading1)
	case BlockTypeHeading2:
		return textOf(b.Heading2)
	case BlockTypeHeading3:
		return textOf(b.Heading3)
	case BlockTypeParagraph:
		return textOf(b.Paragraph)
	case BlockTypeQuote:
		return textOf(b.Quote)
	case BlockTypeBulletedListItem:
		return textOf(b.BulletedListItem)
	case BlockTypeNumberedListItem:
		return textOf(b.NumberedListItem)
	case BlockTypeToggle:
		return textOf(b.Toggle)
	case BlockTypeToDo:
		if b.ToDo != nil {
			return b.ToDo.RichText
		}
	case BlockTypeCallout:
		if b.Callout != nil {
			return b.Callout.RichText
		}
	case BlockTypeCode:
		if b.Code != nil {
			return b.Code.RichText
		}
	}
	return nil
}

func textOf(block *TextBlock) []RichText {
	if block == nil {
		return nil
	}
	return block.RichText
}

// SelectOption is the value of select and status properties.
type SelectOption struct {
	Name string `json:"name"`
}

// Property is a database page property. Only the field matching Type is populated.
type Property struct {
	ID          string        `json:"id,omitempty"`
	Type        string        `json:"type"`
	Title       []RichText    `json:"title,omitempty"`
	RichText    []RichText    `json:"rich_text,omitempty"`
	URL         *string       `json:"url,omitempty"`
	Email       *string       `json:"email,omitempty"`
	PhoneNumber *string       `json:"phone_number,omitempty"`
	Select      *SelectOption `json:"select,omitempty"`
	Status      *SelectOption `json:"status,omitempty"`
	Number      *float64      `json:"number,omitempty"`
	Checkbox    *bool         `json:"checkbox,omitempty"`
}

// Page is the metadata of a page; its content lives in block children.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	LastEditedTime string              `json:"last_edited_time"`
	Archived       bool                `json:"archived,omitempty"`
	Properties     map[string]Property `json:"properties"`
}

// IsFull reports whether the API returned a complete page object.
func (p Page) IsFull() bool {
	return p.Object == "page" && p.ID != "" && p.Properties != nil
}

// PageList is one cursor page of a database query.
type PageList struct {
	Results    []Page `json:"results"`
	NextCursor string `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

// BlockList is one cursor page of block children.
type BlockList struct {
	Results    []Block `json:"results"`
	NextCursor string  `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}
