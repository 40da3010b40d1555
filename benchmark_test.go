package inplace_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ZaguanLabs/inplace"
	"github.com/ZaguanLabs/inplace/cache"
	"github.com/ZaguanLabs/inplace/relay"
)

// Benchmarks for performance validation

func BenchmarkHashText(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inplace.HashText(text)
	}
}

func BenchmarkCacheKey(b *testing.B) {
	req := inplace.Request{Name: inplace.ServiceGoogle, Body: json.RawMessage(`"<p>Hello World</p>"`)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inplace.CacheKey(req)
	}
}

func BenchmarkInMemoryCache_Get(b *testing.B) {
	ctx := context.Background()
	c := cache.NewInMemoryCache(time.Hour)
	c.Set(ctx, "test-key", "test-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, "test-key")
	}
}

func BenchmarkReply_Decode(b *testing.B) {
	reply := inplace.NewReply("<p>你好，世界</p>")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reply.Decode()
	}
}

func BenchmarkRegistry_ExtractResult(b *testing.B) {
	r := inplace.DefaultRegistry()
	data := `<p class="lead">你好 <b>世界</b></p>`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.ExtractResult(inplace.ServiceGoogle, data)
	}
}

func BenchmarkDocument_Anchors(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("<article>")
	for i := 0; i < 100; i++ {
		sb.WriteString("<h2>Section</h2><p>Some paragraph text with <b>bold</b> words.</p><ul><li>One</li><li>Two</li></ul>")
	}
	sb.WriteString("</article>")
	content := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doc, err := inplace.ParseDocument(content)
		if err != nil {
			b.Fatal(err)
		}
		doc.Anchors("")
	}
}

func BenchmarkTranslateDocument_Local(b *testing.B) {
	backend := relay.BackendFunc(func(_ context.Context, body json.RawMessage) (string, error) {
		return "你好", nil
	})
	h := relay.NewHandler(relay.WithBackend(inplace.ServiceTencent, backend))
	o := inplace.New(relay.NewLocalChannel(h))
	content := strings.Repeat("<p>Hello World</p>", 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := o.TranslateDocument(context.Background(), content, "p", inplace.ServiceTencent, ""); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTranslateDocument_Cached(b *testing.B) {
	backend := relay.NewMockBackend()
	h := relay.NewHandler(
		relay.WithBackend(inplace.ServiceGoogle, backend),
		relay.WithCache(cache.NewInMemoryCache(time.Hour)),
	)
	o := inplace.New(relay.NewLocalChannel(h))
	content := strings.Repeat("<p>Hello</p>", 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := o.TranslateDocument(context.Background(), content, "p", inplace.ServiceGoogle, ""); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetLanguageName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		inplace.GetLanguageName("zh_CN")
	}
}
