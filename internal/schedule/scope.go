package schedule

// EditScope 重复系列成员的编辑范围：ThisOccurrence 或 ThisAndFuture
type EditScope interface {
	isEditScope()
	String() string
}

// ThisOccurrence 只修改当前课程，并使其脱离系列
type ThisOccurrence struct{}

// ThisAndFuture 修改当前及之后的所有系列课程
type ThisAndFuture struct{}

func (ThisOccurrence) isEditScope()   {}
func (ThisOccurrence) String() string { return "this" }
func (ThisAndFuture) isEditScope()    {}
func (ThisAndFuture) String() string  { return "future" }

// ParseEditScope 解析编辑范围；空字符串返回 nil 表示调用方尚未选择
func ParseEditScope(s string) (EditScope, error) {
	switch s {
	case "":
		return nil, nil
	case "this":
		return ThisOccurrence{}, nil
	case "future":
		return ThisAndFuture{}, nil
	default:
		return nil, ErrInvalidEditScope
	}
}
