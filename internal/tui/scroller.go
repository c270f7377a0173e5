package tui

// rowScroller keeps the navigator cursor inside the visible window of the
// routes pane. The navigator owns the cursor; the scroller only owns the
// offset.
type rowScroller struct {
	offset int
	height int // visible rows
}

// setHeight updates the visible height.
func (s *rowScroller) setHeight(height int, cursor, total int) {
	s.height = height
	s.ensureVisible(cursor, total)
}

// ensureVisible scrolls so that cursor is on screen.
func (s *rowScroller) ensureVisible(cursor, total int) {
	if s.height <= 0 {
		return
	}
	if cursor < 0 {
		s.offset = 0
		return
	}

	if cursor < s.offset {
		s.offset = cursor
	}
	if cursor >= s.offset+s.height {
		s.offset = cursor - s.height + 1
	}

	// don't leave blank rows below the last route after the list shrinks
	if maxOffset := total - s.height; s.offset > maxOffset {
		s.offset = maxOffset
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// visibleRange returns the start and end indices of visible rows.
func (s *rowScroller) visibleRange(total int) (start, end int) {
	start = s.offset
	end = s.offset + s.height
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return start, end
}

// rowAt converts a line within the window to a route index, or -1.
func (s *rowScroller) rowAt(line, total int) int {
	if line < 0 || line >= s.height {
		return -1
	}
	row := s.offset + line
	if row >= total {
		return -1
	}
	return row
}
