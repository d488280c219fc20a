package infra

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// ModelText is the domain-scoped RBAC model: a subject holds roles per
// company and roles grant resource/action pairs within that company.
const ModelText = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.dom == p.dom && r.obj == p.obj && r.act == p.act
`

// NewEnforcer loads the model from modelPath, falling back to ModelText
// when no path is given.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	if modelPath != "" {
		return casbin.NewEnforcer(modelPath)
	}
	m, err := model.NewModelFromString(ModelText)
	if err != nil {
		return nil, err
	}
	return casbin.NewEnforcer(m)
}
