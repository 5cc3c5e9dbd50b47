package request

type CreateResourceRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	TotalMemoryGB int32  `json:"total_memory_gb" binding:"required,min=1"`
}

type UpdateResourceRequest struct {
	TotalMemoryGB *int32 `json:"total_memory_gb,omitempty"`
	IsActive      *bool  `json:"is_active,omitempty"`
}
