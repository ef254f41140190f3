package psml

import (
	"errors"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
)

// Violation is a semantic problem found by Validate. Attr is empty when the
// problem concerns the element rather than one of its attributes.
type Violation struct {
	Path    string
	Attr    string
	Message string
}

// String formats the violation as path[/@attr]: message.
func (v Violation) String() string {
	if v.Attr == "" {
		return v.Path + ": " + v.Message
	}

	return v.Path + "/@" + v.Attr + ": " + v.Message
}

// Violations is the result of a validation pass.
type Violations []Violation

// Err folds the violations into a single error, or nil when there are none.
func (vs Violations) Err() error {
	var result *multierror.Error

	for _, v := range vs {
		result = multierror.Append(result, errors.New(v.String()))
	}

	return result.ErrorOrNil()
}

var (
	idPattern       = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	propNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]*$`)
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)

	boolRule   = validation.In("true", "false").Error("must be true or false")
	digitsRule = validation.Match(digitsPattern).Error("must be a non-negative integer")
	alignRule  = validation.In(string(AlignLeft), string(AlignCenter), string(AlignRight), string(AlignJustify)).
			Error("must be left, center, right or justify")
	partRule = validation.In(string(PartHeader), string(PartBody), string(PartFooter)).
			Error("must be header, body or footer")
	displayRule = validation.In(
		string(DisplayDocument), string(DisplayDocumentManual), string(DisplayDocumentFragment),
		string(DisplayManual), string(DisplayTemplate),
	).Error("must be a valid display mode")
	fragmentIDRules = []validation.Rule{validation.Required, validation.Match(idPattern).Error("must be a valid id")}
)

type attrRule struct {
	name  string
	rules []validation.Rule
}

func rule(name string, rules ...validation.Rule) attrRule {
	return attrRule{name: name, rules: rules}
}

//nolint:funlen
func attrRules(k Kind) []attrRule {
	switch k {
	case KindDocument:
		return []attrRule{
			rule("level", validation.In(string(LevelMetadata), string(LevelPortable), string(LevelProcessed)).
				Error("must be metadata, portable or processed")),
			rule("edit", boolRule),
			rule("lockstructure", boolRule),
		}
	case KindSection:
		return []attrRule{
			rule("id", fragmentIDRules...),
			rule("edit", boolRule),
			rule("lockstructure", boolRule),
			rule("overwrite", boolRule),
		}
	case KindFragment, KindPropertiesFragment, KindXRefFragment, KindMediaFragment:
		return []attrRule{rule("id", fragmentIDRules...)}
	case KindProperty:
		return []attrRule{
			rule("name", validation.Required, validation.Match(propNamePattern).Error("must be a valid property name")),
			rule("datatype", validation.In(
				string(DatatypeString), string(DatatypeDate), string(DatatypeDatetime), string(DatatypeXRef),
				string(DatatypeLink), string(DatatypeMarkdown), string(DatatypeMarkup),
			).Error("must be a valid datatype")),
			rule("multiple", boolRule),
		}
	case KindXRef:
		return []attrRule{
			rule("display", displayRule),
			rule("type", validation.In(string(XRefTypeNone), string(XRefTypeAlternate), string(XRefTypeMath)).
				Error("must be none, alternate or math")),
			rule("reverselink", boolRule),
			rule("level", digitsRule),
		}
	case KindBlockXRef:
		return []attrRule{
			rule("display", displayRule),
			rule("type", validation.In(
				string(XRefTypeNone), string(XRefTypeAlternate), string(XRefTypeMath),
				string(XRefTypeEmbed), string(XRefTypeTransclude),
			).Error("must be none, alternate, math, embed or transclude")),
			rule("reverselink", boolRule),
		}
	case KindHeading:
		return []attrRule{rule("level", validation.In("1", "2", "3", "4", "5", "6").Error("must be between 1 and 6"))}
	case KindPara:
		return []attrRule{rule("indent", digitsRule), rule("numbered", boolRule)}
	case KindImage:
		return []attrRule{rule("src", validation.Required)}
	case KindLink:
		return []attrRule{rule("href", validation.Required)}
	case KindAnchor:
		return []attrRule{rule("name", validation.Required)}
	case KindLocator:
		return []attrRule{rule("fragment", validation.Required)}
	case KindPublication:
		return []attrRule{rule("id", validation.Required)}
	case KindNList:
		return []attrRule{rule("start", digitsRule)}
	case KindCol:
		return []attrRule{rule("align", alignRule), rule("part", partRule)}
	case KindRow:
		return []attrRule{rule("align", alignRule), rule("part", partRule)}
	case KindCell, KindHCell:
		return []attrRule{rule("align", alignRule), rule("colspan", digitsRule), rule("rowspan", digitsRule)}
	default:
		return nil
	}
}

// Validate checks n and its descendants against PSML attribute rules. It
// never fails: problems are returned as a list, in document order.
func Validate(n Node) Violations {
	var vs Violations

	validateNode(n, "/"+step([]Node{n}, 0), &vs)

	return vs
}

// ValidateDocument validates the root element of doc.
func ValidateDocument(doc *Document) Violations {
	if doc == nil || doc.Root == nil {
		return Violations{{Path: "/", Message: "document has no root element"}}
	}

	return Validate(doc.Root)
}

func validateNode(n Node, path string, vs *Violations) {
	e, ok := n.(Element)
	if !ok {
		return
	}

	for _, r := range attrRules(e.Kind()) {
		value, present := e.Attrs().Get(r.name)
		if !present && !isRequired(r.rules) {
			continue
		}

		err := validation.Validate(value, r.rules...)
		if err != nil {
			*vs = append(*vs, Violation{Path: path, Attr: r.name, Message: err.Error()})
		}
	}

	for _, msg := range structuralChecks(e) {
		*vs = append(*vs, Violation{Path: path, Message: msg})
	}

	children := e.Children()
	for i, c := range children {
		validateNode(c, path+"/"+step(children, i), vs)
	}
}

func isRequired(rules []validation.Rule) bool {
	for _, r := range rules {
		if r == validation.Required {
			return true
		}
	}

	return false
}

func structuralChecks(e Element) []string {
	var msgs []string

	switch e := e.(type) {
	case *XRef, *BlockXRef:
		a := e.Attrs()
		if !a.Has("uriid") && !a.Has("docid") && !a.Has("href") {
			msgs = append(msgs, "one of uriid, docid or href is required")
		}
	case *Property:
		values := childrenOf[*Value](&e.elem)
		if e.Attrs().Has("value") && len(values) > 0 {
			msgs = append(msgs, "value attribute and value elements are mutually exclusive")
		}

		if !e.Multiple() && len(values)+len(e.XRefs()) > 1 {
			msgs = append(msgs, "multiple values require multiple=\"true\"")
		}
	case *Table:
		cols := len(e.Cols())
		for i, r := range e.Rows() {
			width := 0
			for _, c := range r.Cells() {
				width += intAttr(c.base(), "colspan", 1)
			}

			if cols > 0 && width > cols {
				msgs = append(msgs, "row "+strconv.Itoa(i+1)+" spans more columns than declared")
			}
		}
	}

	return msgs
}
