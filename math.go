package tortuga

import lin "github.com/xlab/linmath"

// clipFix maps GL style clip space onto Vulkan's: Y points down and depth
// runs over [0, 1] instead of [-1, 1]. Columns are stored first.
var clipFix = lin.Mat4x4{
	{1.0, 0.0, 0.0, 0.0},
	{0.0, -1.0, 0.0, 0.0},
	{0.0, 0.0, 0.5, 0.0},
	{0.0, 0.0, 0.5, 1.0},
}

// VulkanProjectionMat converts an OpenGL style projection matrix to Vulkan
// style. linmath outputs projection matrices in GL clip space.
func VulkanProjectionMat(m *lin.Mat4x4, proj *lin.Mat4x4) {
	fix := clipFix
	m.Mult(&fix, proj)
}

// DefaultMVP is the transform the demo quad is drawn with: no model or view
// transform and an identity projection fixed up for Vulkan clip space.
func DefaultMVP() lin.Mat4x4 {
	var proj, mvp lin.Mat4x4
	proj.Identity()
	VulkanProjectionMat(&mvp, &proj)
	return mvp
}
