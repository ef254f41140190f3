package psml

// Kind identifies an element variant.
type Kind int

// Element kinds. KindUnknown covers every tag outside PSML.
const (
	KindUnknown Kind = iota
	KindDocument
	KindDocumentInfo
	KindURI
	KindDisplayTitle
	KindLabels
	KindDescription
	KindPublication
	KindFragmentInfo
	KindLocator
	KindNotes
	KindNote
	KindContent
	KindMetadata
	KindProperties
	KindProperty
	KindValue
	KindMarkdown
	KindMarkup
	KindSection
	KindTitle
	KindFragment
	KindPropertiesFragment
	KindXRefFragment
	KindMediaFragment
	KindTOC
	KindHeading
	KindPara
	KindPreformat
	KindBlock
	KindBlockXRef
	KindXRef
	KindReverseXRefs
	KindReverseXRef
	KindLink
	KindAnchor
	KindPlaceholder
	KindImage
	KindList
	KindNList
	KindItem
	KindTable
	KindCaption
	KindCol
	KindRow
	KindHCell
	KindCell
	KindBold
	KindItalic
	KindUnderline
	KindSub
	KindSup
	KindMonospace
	KindInline
	KindBr
)

var kindTags = [...]string{
	KindUnknown:            "",
	KindDocument:           "document",
	KindDocumentInfo:       "documentinfo",
	KindURI:                "uri",
	KindDisplayTitle:       "displaytitle",
	KindLabels:             "labels",
	KindDescription:        "description",
	KindPublication:        "publication",
	KindFragmentInfo:       "fragmentinfo",
	KindLocator:            "locator",
	KindNotes:              "notes",
	KindNote:               "note",
	KindContent:            "content",
	KindMetadata:           "metadata",
	KindProperties:         "properties",
	KindProperty:           "property",
	KindValue:              "value",
	KindMarkdown:           "markdown",
	KindMarkup:             "markup",
	KindSection:            "section",
	KindTitle:              "title",
	KindFragment:           "fragment",
	KindPropertiesFragment: "properties-fragment",
	KindXRefFragment:       "xref-fragment",
	KindMediaFragment:      "media-fragment",
	KindTOC:                "toc",
	KindHeading:            "heading",
	KindPara:               "para",
	KindPreformat:          "preformat",
	KindBlock:              "block",
	KindBlockXRef:          "blockxref",
	KindXRef:               "xref",
	KindReverseXRefs:       "reversexrefs",
	KindReverseXRef:        "reversexref",
	KindLink:               "link",
	KindAnchor:             "anchor",
	KindPlaceholder:        "placeholder",
	KindImage:              "image",
	KindList:               "list",
	KindNList:              "nlist",
	KindItem:               "item",
	KindTable:              "table",
	KindCaption:            "caption",
	KindCol:                "col",
	KindRow:                "row",
	KindHCell:              "hcell",
	KindCell:               "cell",
	KindBold:               "bold",
	KindItalic:             "italic",
	KindUnderline:          "underline",
	KindSub:                "sub",
	KindSup:                "sup",
	KindMonospace:          "monospace",
	KindInline:             "inline",
	KindBr:                 "br",
}

var tagKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindTags))
	for k, tag := range kindTags {
		if tag != "" {
			m[tag] = Kind(k)
		}
	}

	return m
}()

// KindOf returns the kind for a raw tag name. Prefixed names and names not
// defined by PSML return KindUnknown.
func KindOf(tag string) Kind {
	return tagKinds[tag]
}

// Tag returns the element name for k, or "" for KindUnknown.
func (k Kind) Tag() string {
	if k < 0 || int(k) >= len(kindTags) {
		return ""
	}

	return kindTags[k]
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}

	return k.Tag()
}

func newKnown(k Kind) Element {
	switch k {
	case KindDocument:
		return &DocumentElement{}
	case KindDocumentInfo:
		return &DocumentInfo{}
	case KindURI:
		return &URI{}
	case KindDisplayTitle:
		return &DisplayTitle{}
	case KindLabels:
		return &Labels{}
	case KindDescription:
		return &Description{}
	case KindPublication:
		return &Publication{}
	case KindFragmentInfo:
		return &FragmentInfo{}
	case KindLocator:
		return &Locator{}
	case KindNotes:
		return &Notes{}
	case KindNote:
		return &Note{}
	case KindContent:
		return &Content{}
	case KindMetadata:
		return &Metadata{}
	case KindProperties:
		return &Properties{}
	case KindProperty:
		return &Property{}
	case KindValue:
		return &Value{}
	case KindMarkdown:
		return &Markdown{}
	case KindMarkup:
		return &Markup{}
	case KindSection:
		return &Section{}
	case KindTitle:
		return &Title{}
	case KindFragment:
		return &Fragment{}
	case KindPropertiesFragment:
		return &PropertiesFragment{}
	case KindXRefFragment:
		return &XRefFragment{}
	case KindMediaFragment:
		return &MediaFragment{}
	case KindTOC:
		return &TOC{}
	case KindHeading:
		return &Heading{}
	case KindPara:
		return &Para{}
	case KindPreformat:
		return &Preformat{}
	case KindBlock:
		return &Block{}
	case KindBlockXRef:
		return &BlockXRef{}
	case KindXRef:
		return &XRef{}
	case KindReverseXRefs:
		return &ReverseXRefs{}
	case KindReverseXRef:
		return &ReverseXRef{}
	case KindLink:
		return &Link{}
	case KindAnchor:
		return &Anchor{}
	case KindPlaceholder:
		return &Placeholder{}
	case KindImage:
		return &Image{}
	case KindList:
		return &List{}
	case KindNList:
		return &NList{}
	case KindItem:
		return &Item{}
	case KindTable:
		return &Table{}
	case KindCaption:
		return &Caption{}
	case KindCol:
		return &Col{}
	case KindRow:
		return &Row{}
	case KindHCell:
		return &HCell{}
	case KindCell:
		return &Cell{}
	case KindBold:
		return &Bold{}
	case KindItalic:
		return &Italic{}
	case KindUnderline:
		return &Underline{}
	case KindSub:
		return &Sub{}
	case KindSup:
		return &Sup{}
	case KindMonospace:
		return &Monospace{}
	case KindInline:
		return &Inline{}
	case KindBr:
		return &Br{}
	default:
		return nil
	}
}

// Element variants. Types with PSML-specific semantics carry accessors in
// elements.go.
type (
	DocumentElement    struct{ elem }
	DocumentInfo       struct{ elem }
	URI                struct{ elem }
	DisplayTitle       struct{ elem }
	Labels             struct{ elem }
	Description        struct{ elem }
	Publication        struct{ elem }
	FragmentInfo       struct{ elem }
	Locator            struct{ elem }
	Notes              struct{ elem }
	Note               struct{ elem }
	Content            struct{ elem }
	Metadata           struct{ elem }
	Properties         struct{ elem }
	Property           struct{ elem }
	Value              struct{ elem }
	Markdown           struct{ elem }
	Markup             struct{ elem }
	Section            struct{ elem }
	Title              struct{ elem }
	Fragment           struct{ elem }
	PropertiesFragment struct{ elem }
	XRefFragment       struct{ elem }
	MediaFragment      struct{ elem }
	TOC                struct{ elem }
	Heading            struct{ elem }
	Para               struct{ elem }
	Preformat          struct{ elem }
	Block              struct{ elem }
	BlockXRef          struct{ elem }
	XRef               struct{ elem }
	ReverseXRefs       struct{ elem }
	ReverseXRef        struct{ elem }
	Link               struct{ elem }
	Anchor             struct{ elem }
	Placeholder        struct{ elem }
	Image              struct{ elem }
	List               struct{ elem }
	NList              struct{ elem }
	Item               struct{ elem }
	Table              struct{ elem }
	Caption            struct{ elem }
	Col                struct{ elem }
	Row                struct{ elem }
	HCell              struct{ elem }
	Cell               struct{ elem }
	Bold               struct{ elem }
	Italic             struct{ elem }
	Underline          struct{ elem }
	Sub                struct{ elem }
	Sup                struct{ elem }
	Monospace          struct{ elem }
	Inline             struct{ elem }
	Br                 struct{ elem }
)

func (*DocumentElement) Kind() Kind { return KindDocument }
func (*DocumentElement) Tag() string { return KindDocument.Tag() }
func (*DocumentInfo) Kind() Kind { return KindDocumentInfo }
func (*DocumentInfo) Tag() string { return KindDocumentInfo.Tag() }
func (*URI) Kind() Kind { return KindURI }
func (*URI) Tag() string { return KindURI.Tag() }
func (*DisplayTitle) Kind() Kind { return KindDisplayTitle }
func (*DisplayTitle) Tag() string { return KindDisplayTitle.Tag() }
func (*Labels) Kind() Kind { return KindLabels }
func (*Labels) Tag() string { return KindLabels.Tag() }
func (*Description) Kind() Kind { return KindDescription }
func (*Description) Tag() string { return KindDescription.Tag() }
func (*Publication) Kind() Kind { return KindPublication }
func (*Publication) Tag() string { return KindPublication.Tag() }
func (*FragmentInfo) Kind() Kind { return KindFragmentInfo }
func (*FragmentInfo) Tag() string { return KindFragmentInfo.Tag() }
func (*Locator) Kind() Kind { return KindLocator }
func (*Locator) Tag() string { return KindLocator.Tag() }
func (*Notes) Kind() Kind { return KindNotes }
func (*Notes) Tag() string { return KindNotes.Tag() }
func (*Note) Kind() Kind { return KindNote }
func (*Note) Tag() string { return KindNote.Tag() }
func (*Content) Kind() Kind { return KindContent }
func (*Content) Tag() string { return KindContent.Tag() }
func (*Metadata) Kind() Kind { return KindMetadata }
func (*Metadata) Tag() string { return KindMetadata.Tag() }
func (*Properties) Kind() Kind { return KindProperties }
func (*Properties) Tag() string { return KindProperties.Tag() }
func (*Property) Kind() Kind { return KindProperty }
func (*Property) Tag() string { return KindProperty.Tag() }
func (*Value) Kind() Kind { return KindValue }
func (*Value) Tag() string { return KindValue.Tag() }
func (*Markdown) Kind() Kind { return KindMarkdown }
func (*Markdown) Tag() string { return KindMarkdown.Tag() }
func (*Markup) Kind() Kind { return KindMarkup }
func (*Markup) Tag() string { return KindMarkup.Tag() }
func (*Section) Kind() Kind { return KindSection }
func (*Section) Tag() string { return KindSection.Tag() }
func (*Title) Kind() Kind { return KindTitle }
func (*Title) Tag() string { return KindTitle.Tag() }
func (*Fragment) Kind() Kind { return KindFragment }
func (*Fragment) Tag() string { return KindFragment.Tag() }
func (*PropertiesFragment) Kind() Kind { return KindPropertiesFragment }
func (*PropertiesFragment) Tag() string { return KindPropertiesFragment.Tag() }
func (*XRefFragment) Kind() Kind { return KindXRefFragment }
func (*XRefFragment) Tag() string { return KindXRefFragment.Tag() }
func (*MediaFragment) Kind() Kind { return KindMediaFragment }
func (*MediaFragment) Tag() string { return KindMediaFragment.Tag() }
func (*TOC) Kind() Kind { return KindTOC }
func (*TOC) Tag() string { return KindTOC.Tag() }
func (*Heading) Kind() Kind { return KindHeading }
func (*Heading) Tag() string { return KindHeading.Tag() }
func (*Para) Kind() Kind { return KindPara }
func (*Para) Tag() string { return KindPara.Tag() }
func (*Preformat) Kind() Kind { return KindPreformat }
func (*Preformat) Tag() string { return KindPreformat.Tag() }
func (*Block) Kind() Kind { return KindBlock }
func (*Block) Tag() string { return KindBlock.Tag() }
func (*BlockXRef) Kind() Kind { return KindBlockXRef }
func (*BlockXRef) Tag() string { return KindBlockXRef.Tag() }
func (*XRef) Kind() Kind { return KindXRef }
func (*XRef) Tag() string { return KindXRef.Tag() }
func (*ReverseXRefs) Kind() Kind { return KindReverseXRefs }
func (*ReverseXRefs) Tag() string { return KindReverseXRefs.Tag() }
func (*ReverseXRef) Kind() Kind { return KindReverseXRef }
func (*ReverseXRef) Tag() string { return KindReverseXRef.Tag() }
func (*Link) Kind() Kind { return KindLink }
func (*Link) Tag() string { return KindLink.Tag() }
func (*Anchor) Kind() Kind { return KindAnchor }
func (*Anchor) Tag() string { return KindAnchor.Tag() }
func (*Placeholder) Kind() Kind { return KindPlaceholder }
func (*Placeholder) Tag() string { return KindPlaceholder.Tag() }
func (*Image) Kind() Kind { return KindImage }
func (*Image) Tag() string { return KindImage.Tag() }
func (*List) Kind() Kind { return KindList }
func (*List) Tag() string { return KindList.Tag() }
func (*NList) Kind() Kind { return KindNList }
func (*NList) Tag() string { return KindNList.Tag() }
func (*Item) Kind() Kind { return KindItem }
func (*Item) Tag() string { return KindItem.Tag() }
func (*Table) Kind() Kind { return KindTable }
func (*Table) Tag() string { return KindTable.Tag() }
func (*Caption) Kind() Kind { return KindCaption }
func (*Caption) Tag() string { return KindCaption.Tag() }
func (*Col) Kind() Kind { return KindCol }
func (*Col) Tag() string { return KindCol.Tag() }
func (*Row) Kind() Kind { return KindRow }
func (*Row) Tag() string { return KindRow.Tag() }
func (*HCell) Kind() Kind { return KindHCell }
func (*HCell) Tag() string { return KindHCell.Tag() }
func (*Cell) Kind() Kind { return KindCell }
func (*Cell) Tag() string { return KindCell.Tag() }
func (*Bold) Kind() Kind { return KindBold }
func (*Bold) Tag() string { return KindBold.Tag() }
func (*Italic) Kind() Kind { return KindItalic }
func (*Italic) Tag() string { return KindItalic.Tag() }
func (*Underline) Kind() Kind { return KindUnderline }
func (*Underline) Tag() string { return KindUnderline.Tag() }
func (*Sub) Kind() Kind { return KindSub }
func (*Sub) Tag() string { return KindSub.Tag() }
func (*Sup) Kind() Kind { return KindSup }
func (*Sup) Tag() string { return KindSup.Tag() }
func (*Monospace) Kind() Kind { return KindMonospace }
func (*Monospace) Tag() string { return KindMonospace.Tag() }
func (*Inline) Kind() Kind { return KindInline }
func (*Inline) Tag() string { return KindInline.Tag() }
func (*Br) Kind() Kind { return KindBr }
func (*Br) Tag() string { return KindBr.Tag() }
