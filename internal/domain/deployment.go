package domain

// DeploymentContext supplies the naming inputs a rendered query is scoped to.
type DeploymentContext interface {
	ProjectName() string
	ActiveDeploymentName() string
}

// StaticDeployment is a DeploymentContext with fixed names, typically loaded
// from configuration.
type StaticDeployment struct {
	Project    string
	Deployment string
}

// ProjectName implements DeploymentContext.
func (d StaticDeployment) ProjectName() string { return d.Project }

// ActiveDeploymentName implements DeploymentContext.
func (d StaticDeployment) ActiveDeploymentName() string { return d.Deployment }
