package inspect

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"github.com/dtnitsch/bbs-archive-parser/pkg/parser"
	"github.com/dtnitsch/bbs-archive-parser/pkg/resolver"
	"gopkg.in/yaml.v3"
)

const rootPost = "<pre>发信人: alice (Alice), 信区: water\n标  题: lunch\n发信站: 饮水思源 (2004年10月09日12:00:00 星期六)\n\nanyone for lunch?\n--\n</pre>"
const replyPost = "<pre>发信人: bob (Bob), 信区: water\n标  题: Re: lunch\n发信站: 饮水思源 (2004年10月09日12:05:00 星期六)\n\n【 在 alice 的大作中提到: 】\n: anyone for lunch?\nme!\n--\n</pre>"

func TestInspect(t *testing.T) {
	doc := &models.RawDocument{Reid: "42", Title: "lunch", Section: "water", Pages: []string{rootPost + replyPost}}

	var buf bytes.Buffer
	if err := Inspect(context.Background(), &buf, doc, &parser.Parser{}, &resolver.Resolver{TopK: 2}); err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}

	var got models.Topic
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a topic: %v\n%s", err, buf.String())
	}
	if got.ID != 42 || got.Board != "water" || len(got.Posts) != 1 {
		t.Fatalf("decoded topic = %+v", got)
	}
	if rt := got.Posts[0].ReplyTo; rt == nil || *rt != models.RootIndex {
		t.Errorf("ReplyTo = %v, want root", rt)
	}
	if !strings.Contains(got.Posts[0].Content, `[quote="alice"]`) {
		t.Errorf("canonical quote missing from reply content %q", got.Posts[0].Content)
	}
}

func TestInspectWithoutResolver(t *testing.T) {
	doc := &models.RawDocument{Reid: "42", Section: "water", Pages: []string{rootPost + replyPost}}

	var buf bytes.Buffer
	if err := Inspect(context.Background(), &buf, doc, &parser.Parser{}, nil); err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if strings.Contains(buf.String(), "reply_to") {
		t.Errorf("unresolved topic printed reply_to:\n%s", buf.String())
	}
}

func TestInspectNotParseable(t *testing.T) {
	doc := &models.RawDocument{Reid: "1", Pages: []string{"<pre>" + parser.SystemHint + "</pre>"}}
	err := Inspect(context.Background(), &bytes.Buffer{}, doc, &parser.Parser{}, nil)
	if !errors.Is(err, parser.ErrNotParseable) {
		t.Errorf("Inspect() error = %v, want ErrNotParseable", err)
	}
}
