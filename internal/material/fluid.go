package material

// FluidHooks lowers the top surface of a fluid block unless the same fluid
// sits directly above it.
type FluidHooks struct {
	// Surface is the fluid height inside the block, in block units.
	Surface float32
}

func (FluidHooks) PreMesh(*MeshRequest) {}

func (h FluidHooks) PostMesh(req *MeshRequest) {
	if req.Snapshot != nil && req.Snapshot.BlockAt(req.X, req.Y+1, req.Z) == req.Material.ID() {
		return
	}
	top := req.Position[1] + 1
	surface := req.Position[1] + h.Surface
	for i := range req.Result {
		for j := range req.Result[i] {
			if req.Result[i][j].Position[1] == top {
				req.Result[i][j].Position[1] = surface
			}
		}
	}
}
