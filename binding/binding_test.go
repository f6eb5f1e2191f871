package binding

import (
	"encoding/json"
	"testing"
)

func sampleRecord() Record {
	return Record{
		"Name":           String("Ada Lovelace"),
		"Skills":         List("Go", "Rust", "SQL"),
		"Website":        URL("ada.dev", "https://ada.dev"),
		"Google Scholar": String("scholar-id"),
		"Missing":        {},
	}
}

func TestLookupExactField(t *testing.T) {
	rec := sampleRecord()
	c, ok := rec.Lookup("Google Scholar")
	if !ok || c.String() != "scholar-id" {
		t.Fatalf("期望命中含空格字段，got %#v ok=%v", c, ok)
	}
	if _, ok := rec.Lookup("Missing"); ok {
		t.Fatalf("缺失内容不应被视为命中")
	}
	if _, ok := rec.Lookup("Nope"); ok {
		t.Fatalf("未知字段不应命中")
	}
}

func TestLookupPaths(t *testing.T) {
	rec := sampleRecord()
	c, ok := rec.Lookup("Skills[1]")
	if !ok || c.String() != "Rust" {
		t.Fatalf("Skills[1] 期望 Rust，got %q ok=%v", c.String(), ok)
	}
	if _, ok := rec.Lookup("Skills[9]"); ok {
		t.Fatalf("越界下标不应命中")
	}
	c, ok = rec.Lookup("Website.url")
	if !ok || c.String() != "https://ada.dev" {
		t.Fatalf("Website.url 解析错误: %q ok=%v", c.String(), ok)
	}
}

func TestItemContentString(t *testing.T) {
	rec := sampleRecord()
	if got := rec["Skills"].String(); got != "Go, Rust, SQL" {
		t.Fatalf("列表拼接错误: %q", got)
	}
	if got := rec["Website"].String(); got != "ada.dev" {
		t.Fatalf("链接应显示标签: %q", got)
	}
	if got := rec["Website"].Link(); got != "https://ada.dev" {
		t.Fatalf("链接目标错误: %q", got)
	}
	if got := URL("", "https://x.io").String(); got != "https://x.io" {
		t.Fatalf("无标签链接应显示地址: %q", got)
	}
}

func TestItemContentJSON(t *testing.T) {
	input := `{"A": "text", "B": ["x", "y"], "C": {"url": "https://u", "text": "U"}, "D": null, "E": 2024}`
	var rec Record
	if err := json.Unmarshal([]byte(input), &rec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if rec["A"].Kind != ContentString || rec["A"].Text != "text" {
		t.Fatalf("A 解析错误: %#v", rec["A"])
	}
	if rec["B"].Kind != ContentList || len(rec["B"].List) != 2 {
		t.Fatalf("B 解析错误: %#v", rec["B"])
	}
	if rec["C"].Kind != ContentURL || rec["C"].URL != "https://u" || rec["C"].Text != "U" {
		t.Fatalf("C 解析错误: %#v", rec["C"])
	}
	if !rec["D"].IsAbsent() {
		t.Fatalf("null 应解析为缺失: %#v", rec["D"])
	}
	if rec["E"].String() != "2024" {
		t.Fatalf("数字应转为字符串: %#v", rec["E"])
	}
}

func TestInterpolate(t *testing.T) {
	rec := sampleRecord()
	got := Interpolate("${Name} - ${Skills} (${Unknown})", rec)
	want := "Ada Lovelace - Go, Rust, SQL (${Unknown})"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	var data any
	if err := json.Unmarshal([]byte(`{"user": {"names": ["a", "b"]}}`), &data); err != nil {
		t.Fatal(err)
	}
	if got := Interpolate("hi ${user.names[1]}", data); got != "hi b" {
		t.Fatalf("map 数据插值错误: %q", got)
	}
	if got := Interpolate("${x}", nil); got != "${x}" {
		t.Fatalf("nil 数据应原样返回: %q", got)
	}
}
