package desensitize

import "io"

// Writer 写入前对内容脱敏
type Writer struct {
	w    io.Writer
	hook *Hook
}

// NewWriter 包装 w
func NewWriter(w io.Writer, hook *Hook) *Writer {
	return &Writer{w: w, hook: hook}
}

// Write 返回值为原始 p 的长度，以满足 io.Writer 约定
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.hook == nil || w.hook.Len() == 0 {
		return w.w.Write(p)
	}

	text := string(p)
	out := w.hook.Desensitize(text)
	if out == text {
		return w.w.Write(p)
	}
	if _, err := io.WriteString(w.w, out); err != nil {
		return 0, err
	}
	return len(p), nil
}
