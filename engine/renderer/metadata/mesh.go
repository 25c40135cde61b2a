package metadata

// Submesh describes the draw arguments of a range inside a geometry's buffers.
type Submesh struct {
	IndexCount         uint32
	StartIndexLocation uint32
	BaseVertexLocation int32
}

type MeshGeometry struct {
	Handle   MeshHandle
	Name     string
	DrawArgs map[string]Submesh
}
