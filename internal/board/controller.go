// Package board holds the state machine behind the drag-and-drop link
// board: an in-memory container map that applies drops optimistically,
// submits the resulting layout as a reorder, and rolls the map back to
// its pre-drag snapshot when the submission is rejected.
package board

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/layout"
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrDragState is returned when a drag operation arrives in the wrong
// state, such as a drop without a preceding drag start.
var ErrDragState = errors.New("invalid drag state")

// ErrUnknownTarget is returned when a drag references a link or
// container the board does not know.
var ErrUnknownTarget = errors.New("unknown drag target")

// LayoutReorderer persists a full desired layout. The controller only
// needs the reorder operation, not the whole mutation surface.
type LayoutReorderer interface {
	Reorder(ctx context.Context, profileID string, payload layout.ReorderPayload) error
}

// Controller mirrors the persisted layout as a map of ordered
// containers and mediates drags against it. All methods are safe for
// concurrent use; a drag is a DragStart / DragEnd-or-DragCancel pair
// and only one drag can be in flight at a time.
type Controller struct {
	profileID string
	reorderer LayoutReorderer
	log       *zap.Logger

	mu         sync.Mutex
	containers map[layout.ContainerID][]*domain.Link
	order      []layout.ContainerID
	sections   []*domain.Section
	signature  string

	activeLinkID string
	snapshot     map[layout.ContainerID][]*domain.Link
}

// NewController creates a board for one profile. The board is empty
// until the first Hydrate.
func NewController(profileID string, reorderer LayoutReorderer, log *zap.Logger) *Controller {
	return &Controller{
		profileID:  profileID,
		reorderer:  reorderer,
		log:        log,
		containers: map[layout.ContainerID][]*domain.Link{layout.Unsectioned: {}},
		order:      []layout.ContainerID{layout.Unsectioned},
	}
}

// Hydrate replaces the board state with a freshly loaded layout. The
// refresh is skipped while a drag is in flight, and skipped when the
// layout signature matches the current state so an in-flight optimistic
// reorder echoed back by the server does not clobber the board. It
// reports whether the state was replaced.
func (c *Controller) Hydrate(current *domain.Layout) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeLinkID != "" {
		return false
	}
	signature := layout.Signature(current.Links, current.Sections)
	if signature == c.signature {
		return false
	}

	c.sections = layout.SortSections(current.Sections)
	c.containers, c.order = layout.BuildContainers(current.Links, current.Sections)
	c.signature = signature
	return true
}

// DragStart begins a drag of one link and snapshots the board so a
// rejected drop can be rolled back exactly.
func (c *Controller) DragStart(linkID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeLinkID != "" {
		return ErrDragState
	}
	if _, _, _, ok := c.locate(linkID); !ok {
		return ErrUnknownTarget
	}
	c.activeLinkID = linkID
	c.snapshot = c.copyContainers()
	return nil
}

// DragCancel abandons the active drag and restores the snapshot.
func (c *Controller) DragCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeLinkID == "" {
		return
	}
	c.restoreLocked()
}

// DragEnd drops the active link onto a target: either another link's
// id, in which case the dragged link takes that link's position, or a
// container id, in which case it is appended to that container. The
// move is applied to the board first and then submitted as a reorder;
// a rejected submission restores the pre-drag snapshot.
func (c *Controller) DragEnd(ctx context.Context, overID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeLinkID == "" {
		return ErrDragState
	}
	linkID := c.activeLinkID

	sourceContainer, sourceIndex, link, ok := c.locate(linkID)
	if !ok {
		c.restoreLocked()
		return ErrUnknownTarget
	}
	targetContainer, targetIndex, ok := c.dropPosition(overID, sourceContainer, sourceIndex)
	if !ok {
		c.restoreLocked()
		return ErrUnknownTarget
	}
	if targetContainer == sourceContainer && targetIndex == sourceIndex {
		// Dropped back where it started.
		c.clearDragLocked()
		return nil
	}

	c.applyMoveLocked(link, sourceContainer, sourceIndex, targetContainer, targetIndex)
	payload := layout.PayloadFromContainers(c.containers, c.sections)

	if err := c.reorderer.Reorder(ctx, c.profileID, payload); err != nil {
		c.log.Warn("reorder rejected, rolling back board",
			zap.String("profile_id", c.profileID),
			zap.String("link_id", linkID),
			zap.Error(err))
		c.restoreLocked()
		return err
	}

	c.signature = c.signatureLocked()
	c.clearDragLocked()
	return nil
}

// Snapshot returns a copy of the current container map in container
// order, for rendering.
func (c *Controller) Snapshot() (map[layout.ContainerID][]*domain.Link, []layout.ContainerID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	order := make([]layout.ContainerID, len(c.order))
	copy(order, c.order)
	return c.copyContainers(), order
}

// Signature returns the signature of the board's current state.
func (c *Controller) Signature() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signatureLocked()
}

// Dragging reports the id of the link being dragged, if any.
func (c *Controller) Dragging() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLinkID, c.activeLinkID != ""
}

// locate finds a link by id across all containers.
func (c *Controller) locate(linkID string) (layout.ContainerID, int, *domain.Link, bool) {
	for _, id := range c.order {
		for i, link := range c.containers[id] {
			if link.ID == linkID {
				return id, i, link, true
			}
		}
	}
	return "", 0, nil, false
}

// dropPosition resolves a drop target to a container and an insertion
// index. A container id drops at the end of that container; a link id
// drops at that link's position. The index addresses the container
// after the dragged link has been spliced out of it.
func (c *Controller) dropPosition(overID string, sourceContainer layout.ContainerID, sourceIndex int) (layout.ContainerID, int, bool) {
	if strings.HasPrefix(overID, "container:") {
		id := layout.ContainerID(overID)
		links, ok := c.containers[id]
		if !ok {
			return "", 0, false
		}
		if id == sourceContainer {
			// Appending within the same container lands after the
			// dragged link is removed from it.
			return id, len(links) - 1, true
		}
		return id, len(links), true
	}

	container, index, _, ok := c.locate(overID)
	if !ok {
		return "", 0, false
	}
	return container, index, true
}

// applyMoveLocked splices the link out of its source container and
// into the target, reassigning its section and renumbering both
// containers.
func (c *Controller) applyMoveLocked(link *domain.Link, sourceContainer layout.ContainerID, sourceIndex int, targetContainer layout.ContainerID, targetIndex int) {
	source := c.containers[sourceContainer]
	source = append(source[:sourceIndex], source[sourceIndex+1:]...)
	c.containers[sourceContainer] = source

	link.SectionID = targetContainer.SectionIDOf()

	target := c.containers[targetContainer]
	if targetIndex > len(target) {
		targetIndex = len(target)
	}
	target = append(target, nil)
	copy(target[targetIndex+1:], target[targetIndex:])
	target[targetIndex] = link
	c.containers[targetContainer] = target

	layout.Renumber(c.containers[sourceContainer])
	if targetContainer != sourceContainer {
		layout.Renumber(c.containers[targetContainer])
	}
}

func (c *Controller) restoreLocked() {
	if c.snapshot != nil {
		c.containers = c.snapshot
	}
	c.clearDragLocked()
}

func (c *Controller) clearDragLocked() {
	c.activeLinkID = ""
	c.snapshot = nil
}

func (c *Controller) copyContainers() map[layout.ContainerID][]*domain.Link {
	copied := make(map[layout.ContainerID][]*domain.Link, len(c.containers))
	for id, links := range c.containers {
		list := make([]*domain.Link, len(links))
		for i, link := range links {
			clone := *link
			list[i] = &clone
		}
		copied[id] = list
	}
	return copied
}

func (c *Controller) signatureLocked() string {
	links := make([]*domain.Link, 0)
	for _, id := range c.order {
		links = append(links, c.containers[id]...)
	}
	return layout.Signature(links, c.sections)
}
