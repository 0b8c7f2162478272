package pcb

// GetBoundingBox calculates the bounding box of the entire board from its
// graphics and footprint pads.
func (b *Board) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, fp := range b.Footprints {
		bbox.ExpandBox(fp.GetBoundingBox())
	}

	for _, g := range b.Graphics {
		bbox.Expand(g.Start)
		bbox.Expand(g.End)
	}

	return bbox
}

// GetBoundingBox calculates the bounding box of a footprint from its pads
// and graphics in board coordinates.
func (fp *Footprint) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, pad := range fp.Pads {
		halfW := pad.Size.Width / 2
		halfH := pad.Size.Height / 2
		// pad corners in pad-local space, then rotated with the footprint
		for _, corner := range []Position{
			{X: pad.Position.X - halfW, Y: pad.Position.Y - halfH},
			{X: pad.Position.X + halfW, Y: pad.Position.Y - halfH},
			{X: pad.Position.X + halfW, Y: pad.Position.Y + halfH},
			{X: pad.Position.X - halfW, Y: pad.Position.Y + halfH},
		} {
			bbox.Expand(fp.Position.Transform(corner))
		}
	}

	for _, g := range fp.Graphics {
		bbox.Expand(fp.Position.Transform(g.Start))
		bbox.Expand(fp.Position.Transform(g.End))
	}

	// If there is nothing else, at least include the footprint origin
	if bbox.IsEmpty() {
		bbox.Expand(fp.Position.Position)
	}

	return bbox
}

// PadPosition returns the absolute board position of a pad's centre.
func (fp *Footprint) PadPosition(pad Pad) Position {
	return fp.Position.Transform(pad.Position.Position)
}
