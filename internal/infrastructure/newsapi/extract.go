package newsapi

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Content selectors tried after the <article> tag, in order. They cover the
// markup of the mainstream outlets the pipeline actually ingests.
var contentSelectors = []string{
	"div.article-content", "div.article-body", "div.story-body",
	"div.article", "div#content", "div.storyContent",
	"div.entry-content", "div.post-content", "div.td-post-content",
	"div.content-body", "main article",
}

const minParagraphChars = 50

// ExtractArticleText pulls readable article text out of an HTML page. It
// tries the <article> tag, then common content containers, then falls back
// to all sufficiently long body paragraphs. An empty string means no
// meaningful content was found.
func ExtractArticleText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	if text := paragraphText(doc.Find("article").First()); text != "" {
		return text, nil
	}

	for _, sel := range contentSelectors {
		if text := paragraphText(doc.Find(sel).First()); text != "" {
			return text, nil
		}
	}

	return paragraphText(doc.Find("body").First()), nil
}

// paragraphText joins the node's paragraphs, keeping only ones long enough
// to be content rather than navigation. At least two are required.
func paragraphText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	var paragraphs []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) > minParagraphChars {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) < 2 {
		return ""
	}
	return strings.Join(paragraphs, "\n\n")
}
