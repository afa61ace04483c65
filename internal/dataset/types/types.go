package types

// FileType 输入文件类型
type FileType string

const (
	FileTypeTxt  FileType = "txt"
	FileTypeMd   FileType = "md"
	FileTypeJSON FileType = "json"
)

// Valid 检查文件类型是否有效
func (ft FileType) Valid() bool {
	switch ft {
	case FileTypeTxt, FileTypeMd, FileTypeJSON:
		return true
	}
	return false
}

// String 返回字符串表示
func (ft FileType) String() string {
	return string(ft)
}

// ChunkStrategy 分块策略
type ChunkStrategy string

const (
	// ChunkStrategyFixedWindow 按词数的滑动窗口分块
	ChunkStrategyFixedWindow ChunkStrategy = "fixed_window"
	// ChunkStrategyParagraph 按空行分段
	ChunkStrategyParagraph ChunkStrategy = "paragraph"
	// ChunkStrategySentenceBudget 按字符预算并尽量在句末切分
	ChunkStrategySentenceBudget ChunkStrategy = "sentence_budget"
)

// Valid 检查分块策略是否有效
func (cs ChunkStrategy) Valid() bool {
	switch cs {
	case ChunkStrategyFixedWindow, ChunkStrategyParagraph, ChunkStrategySentenceBudget:
		return true
	}
	return false
}

// String 返回字符串表示
func (cs ChunkStrategy) String() string {
	return string(cs)
}

// RowShape 输出表的行结构
type RowShape int

const (
	// RowShapeTitleText 输出 (title, text)
	RowShapeTitleText RowShape = iota
	// RowShapeText 只输出 (text)
	RowShapeText
)

// Header 返回表头
func (s RowShape) Header() []string {
	if s == RowShapeText {
		return []string{"text"}
	}
	return []string{"title", "text"}
}

// RowShape 返回策略对应的行结构
func (cs ChunkStrategy) RowShape() RowShape {
	if cs == ChunkStrategySentenceBudget {
		return RowShapeText
	}
	return RowShapeTitleText
}
