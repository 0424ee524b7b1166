package chunking

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

// classPattern and methodPattern are tolerant of modifiers, generics,
// annotations and throws clauses, grounded on the source corpus's
// JavaCodeSplitter regexes.
var (
	classPattern  = regexp.MustCompile(`(?:public|private|protected)?\s*(?:static)?\s*(?:final)?\s*(?:abstract)?\s*class\s+(\w+)`)
	methodPattern = regexp.MustCompile(`(?:public|private|protected)?\s*(?:static)?\s*(?:final)?\s*(?:synchronized)?\s*(?:<[^>]+>\s*)?(?:\w+(?:<[^>]+>)?(?:\[\])?\s+)(\w+)\s*\([^)]*\)\s*(?:throws\s+[^{]+)?\s*\{`)
)

const unknownClass = "UnknownClass"

// JavaSplitter is the code-aware splitter for Java-like source: it tracks
// brace depth to find top-level method boundaries and never splits the
// interior of a method.
type JavaSplitter struct{}

// NewJavaSplitter constructs a JavaSplitter.
func NewJavaSplitter() *JavaSplitter { return &JavaSplitter{} }

type codeBlock struct {
	content    strings.Builder
	kind       string // "header", "class", "method"
	methodName string
	startLine  int // 1-indexed
	endLine    int
}

func (s *JavaSplitter) Split(doc LoadedDocument, maxTokens int) ([]*domain.Fragment, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}
	if maxTokens <= 0 {
		maxTokens = 1500
	}

	className := extractClassName(doc.Content)
	blocks := extractCodeBlocks(doc.Content)
	bodies := groupCodeBlocks(blocks, maxTokens)

	fragments := make([]*domain.Fragment, 0, len(bodies))
	for i, b := range bodies {
		m := newFragmentMetadata(doc, domain.ChunkTypeJavaCode, i, len(bodies))
		m[domain.MetaClassName] = className
		if b.methodName != "" {
			m[domain.MetaMethodName] = b.methodName
		}
		if b.startLine > 0 {
			m.SetInt(domain.MetaStartLine, b.startLine)
			m.SetInt(domain.MetaEndLine, b.endLine)
		}
		fragments = append(fragments, &domain.Fragment{Content: b.text, Metadata: m})
	}
	return fragments, nil
}

func extractClassName(content string) string {
	m := classPattern.FindStringSubmatch(content)
	if m == nil {
		return unknownClass
	}
	return m[1]
}

// extractCodeBlocks scans the file line by line, tracking brace depth, and
// returns the header block followed by an ordered sequence of class-filler
// and method blocks. A method is recognized when a method-shaped
// declaration occurs at depth 1 (class body); its end is the line where
// depth returns to 1.
func extractCodeBlocks(content string) []codeBlock {
	lines := strings.Split(content, "\n")
	var blocks []codeBlock

	var header codeBlock
	header.kind = "header"
	header.startLine = 1
	depth := 0
	headerEnd := len(lines)
	for i, line := range lines {
		header.content.WriteString(line)
		header.content.WriteString("\n")
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth >= 1 {
			headerEnd = i + 1 // 1-indexed line count consumed
			break
		}
	}
	header.endLine = headerEnd
	blocks = append(blocks, header)
	if headerEnd >= len(lines) {
		return blocks
	}

	var current codeBlock
	current.kind = "class"
	current.startLine = headerEnd + 1
	flush := func(endLine int) {
		if current.content.Len() == 0 {
			return
		}
		current.endLine = endLine
		blocks = append(blocks, current)
	}

	for i := headerEnd; i < len(lines); i++ {
		lineNo := i + 1
		line := lines[i]
		depthBefore := depth

		isClassLine := classPattern.MatchString(line)
		isMethodStart := depthBefore == 1 && !isClassLine && methodPattern.MatchString(line)

		if isMethodStart {
			flush(lineNo - 1)
			current = codeBlock{kind: "method", startLine: lineNo}
			current.methodName = methodPattern.FindStringSubmatch(line)[1]
			current.content.WriteString(line)
			current.content.WriteString("\n")
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		current.content.WriteString(line)
		current.content.WriteString("\n")
		depth += strings.Count(line, "{") - strings.Count(line, "}")

		if current.kind == "method" && depthBefore > 1 && depth == 1 {
			flush(lineNo)
			current = codeBlock{kind: "class", startLine: lineNo + 1}
		}
	}
	flush(len(lines))

	return blocks
}

type chunkBody struct {
	text       string
	methodName string
	startLine  int
	endLine    int
}

// classContext extracts the package statement and class/interface
// declaration lines from the header, for use as a condensed continuation
// prefix on forced-split fragments.
func classContext(header string) string {
	var out strings.Builder
	for _, line := range strings.Split(header, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "package ") ||
			strings.HasPrefix(trimmed, "public class") ||
			strings.HasPrefix(trimmed, "class ") ||
			strings.HasPrefix(trimmed, "public interface") {
			out.WriteString(line)
			out.WriteString("\n")
		}
	}
	return out.String()
}

// groupCodeBlocks packs blocks into fragments under the token budget. The
// header always prefixes the first fragment; a forced split prefixes the
// next fragment with a condensed class-context block and a continuation
// marker. A block larger than the budget is emitted as the sole content of
// one fragment — boundary preservation dominates over sizing.
func groupCodeBlocks(blocks []codeBlock, maxTokens int) []chunkBody {
	if len(blocks) == 0 {
		return nil
	}

	header := blocks[0]
	rest := blocks[1:]

	var bodies []chunkBody
	var cur strings.Builder
	cur.WriteString(header.content.String())
	curTokens := estimateTokens(cur.String())
	curStart, curEnd := header.startLine, header.endLine
	curMethod := ""
	methodCount := 0
	haveContent := header.content.Len() > 0

	flush := func() {
		if !haveContent {
			return
		}
		name := curMethod
		if methodCount != 1 {
			name = ""
		}
		bodies = append(bodies, chunkBody{text: cur.String(), methodName: name, startLine: curStart, endLine: curEnd})
		cur.Reset()
		curTokens = 0
		curMethod = ""
		methodCount = 0
		haveContent = false
	}

	for _, b := range rest {
		content := b.content.String()
		blockTokens := estimateTokens(content)

		if curTokens+blockTokens > maxTokens && haveContent {
			flush()
			cur.WriteString("// ... continued from previous chunk\n")
			cur.WriteString(classContext(header.content.String()))
			curTokens = estimateTokens(cur.String())
			curStart = b.startLine
		}

		if !haveContent {
			curStart = b.startLine
		}
		cur.WriteString(content)
		if b.methodName != "" {
			cur.WriteString(fmt.Sprintf("\n// Method: %s\n", b.methodName))
			curMethod = b.methodName
			methodCount++
		}
		curTokens += blockTokens
		curEnd = b.endLine
		haveContent = true
	}
	flush()

	if len(bodies) == 0 {
		return []chunkBody{{text: header.content.String(), startLine: header.startLine, endLine: header.endLine}}
	}
	return bodies
}
