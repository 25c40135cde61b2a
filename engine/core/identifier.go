package core

import "fmt"

// IdentifierPool hands out small integer ids, reusing released ones first.
type IdentifierPool struct {
	owners []interface{}
}

func NewIdentifierPool(capacity int) *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, 0, capacity),
	}
}

func (p *IdentifierPool) AcquireNewID(owner interface{}) uint32 {
	for i, o := range p.owners {
		// Existing free spot. Take it.
		if o == nil {
			p.owners[i] = owner
			return uint32(i)
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

func (p *IdentifierPool) Owner(id uint32) (interface{}, bool) {
	if int(id) >= len(p.owners) || p.owners[id] == nil {
		return nil, false
	}
	return p.owners[id], true
}

func (p *IdentifierPool) ReleaseID(id uint32) error {
	if int(id) >= len(p.owners) {
		return fmt.Errorf("identifier: id '%d' out of range (max=%d): %w", id, len(p.owners), ErrNotFound)
	}

	// Just zero out the entry, making it available for use.
	p.owners[id] = nil
	return nil
}
