package layout

import "github.com/ByLCY/folio/binding"

// Instantiate 把记录中的字段值绑定到模板的 Ref 叶子上，返回新的实例树。
// 找到字段时 Ref 变为 Text（链接目标写入 Element.Link）；
// 字段缺失时变为宽度为 0 的空 Stack，该位置不渲染任何内容。
func (l Layout) Instantiate(record binding.Record) Layout {
	switch l.Kind {
	case KindText:
		return l
	case KindRef:
		content, ok := record.Lookup(l.Element.Item)
		if !ok {
			return emptyStack()
		}
		out := l
		out.Kind = KindText
		out.Element.Item = content.String()
		out.Element.Link = content.Link()
		return out
	}
	children := make([]Layout, len(l.Container.Children))
	for i, c := range l.Container.Children {
		children[i] = c.Instantiate(record)
	}
	return l.withChildren(children)
}
