package renderer

import "github.com/ByLCY/folio/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF、图像或纯文本。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// PageRenderer 按页输出，例如每页一张 PNG。
type PageRenderer interface {
	RenderPages(result *layout.Result) ([][]byte, error)
}
