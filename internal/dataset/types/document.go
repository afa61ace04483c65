package types

// Document 读取后的源文档，读取后不再修改
type Document struct {
	Path     string   `json:"path"`
	Filename string   `json:"filename"`
	Title    string   `json:"title"`
	FileType FileType `json:"file_type"`
	Content  string   `json:"-"`
	FileSize int64    `json:"file_size"`
}

// Unit 单条输出记录
type Unit struct {
	Index      int    `json:"index"`
	Content    string `json:"content"`
	WordCount  int    `json:"word_count"`
	CharCount  int    `json:"char_count"`
	TokenCount int    `json:"token_count,omitempty"`
}

// Row 按行结构展开为表格字段
func (u *Unit) Row(shape RowShape, title string) []string {
	if shape == RowShapeText {
		return []string{u.Content}
	}
	return []string{title, u.Content}
}
