package feed

// Direction records the last selection movement, for presentation only.
type Direction string

const (
	DirectionNone     Direction = ""
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// Navigator tracks only the active item id, so selection survives re-sorts.
// The index is derived by linear lookup in whatever filtered/sorted output is
// current.
type Navigator struct {
	activeID  string
	direction Direction
}

// ActiveID returns the selected item id, or "".
func (n *Navigator) ActiveID() string {
	return n.activeID
}

// Direction returns the last movement direction.
func (n *Navigator) Direction() Direction {
	return n.direction
}

// Select sets the active item directly.
func (n *Navigator) Select(id string) {
	n.activeID = id
	n.direction = DirectionNone
}

// Clear drops the selection.
func (n *Navigator) Clear() {
	n.activeID = ""
	n.direction = DirectionNone
}

// Sync clears the selection when the active id is no longer present in the
// current output, and returns its index (-1 when unselected).
func (n *Navigator) Sync(items []DecoratedActivityItem) int {
	if n.activeID == "" {
		return -1
	}
	if at := indexOf(items, n.activeID); at >= 0 {
		return at
	}
	n.Clear()
	return -1
}

// Next moves forward, wrapping modulo the filtered length. With no current
// selection it lands on the first item.
func (n *Navigator) Next(items []DecoratedActivityItem) (DecoratedActivityItem, bool) {
	return n.move(items, 1, DirectionForward)
}

// Previous moves backward, wrapping modulo the filtered length. With no
// current selection it lands on the last item.
func (n *Navigator) Previous(items []DecoratedActivityItem) (DecoratedActivityItem, bool) {
	return n.move(items, -1, DirectionBackward)
}

func (n *Navigator) move(items []DecoratedActivityItem, step int, dir Direction) (DecoratedActivityItem, bool) {
	if len(items) == 0 {
		n.Clear()
		return DecoratedActivityItem{}, false
	}
	at := indexOf(items, n.activeID)
	if at < 0 {
		if step > 0 {
			at = -step // lands on 0
		} else {
			at = len(items) // lands on len-1
		}
	}
	at = ((at+step)%len(items) + len(items)) % len(items)
	n.activeID = items[at].ID
	n.direction = dir
	return items[at], true
}

func indexOf(items []DecoratedActivityItem, id string) int {
	if id == "" {
		return -1
	}
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
