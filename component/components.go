// Package component is the built-in component catalog: the Go prototypes,
// runtime schemas, and incompatibility rules for the component types the
// editor ships with. External callers can register further types at runtime
// through state.ComponentRegistry directly.
package component

import (
	"github.com/vibe-engine/scenecore/schema"
	"github.com/vibe-engine/scenecore/state"
)

type Transform struct {
	Position [3]float64 `json:"position"`
	Rotation [3]float64 `json:"rotation"`
	Scale    [3]float64 `json:"scale"`
}

func (Transform) Name() string { return "Transform" }

type MeshRenderer struct {
	Mesh        string `json:"mesh"`
	Material    string `json:"material,omitempty"`
	CastShadows bool   `json:"castShadows"`
	Enabled     bool   `json:"enabled"`
}

func (MeshRenderer) Name() string { return "MeshRenderer" }

type RigidBody struct {
	Mass     float64 `json:"mass"`
	BodyType string  `json:"bodyType,omitempty"`
	Friction float64 `json:"friction,omitempty"`
}

func (RigidBody) Name() string { return "RigidBody" }

type Camera struct {
	Fov        float64 `json:"fov"`
	Near       float64 `json:"near"`
	Far        float64 `json:"far"`
	Projection string  `json:"projection,omitempty"`
}

func (Camera) Name() string { return "Camera" }

type Light struct {
	LightType  string     `json:"lightType"`
	Color      [3]float64 `json:"color"`
	Intensity  float64    `json:"intensity"`
	CastShadow bool       `json:"castShadow"`
}

func (Light) Name() string { return "Light" }

// Instanced marks an entity as rendered via GPU instancing.
type Instanced struct {
	Count int `json:"count"`
}

func (Instanced) Name() string { return "Instanced" }

// PrefabInstance is the marker stamped on the root entity of an instantiated
// prefab. Removing it (see prefab.System.Unpack) converts the entity back
// into a free-standing one.
type PrefabInstance struct {
	PrefabID      string         `json:"prefabId"`
	Version       int            `json:"version"`
	InstanceUUID  string         `json:"instanceUuid"`
	OverridePatch map[string]any `json:"overridePatch,omitempty"`
}

func (PrefabInstance) Name() string { return "PrefabInstance" }

// Specs returns the catalog as registry specs. An instanced entity cannot
// also be a simulated rigid body; the conflict is declared on both sides.
func Specs() []state.Spec {
	return []state.Spec{
		{
			Name:      Transform{}.Name(),
			Prototype: Transform{},
			Schema: schema.Doc{Fields: map[string]schema.Field{
				"position": {Kind: schema.Array},
				"rotation": {Kind: schema.Array},
				"scale":    {Kind: schema.Array},
			}},
		},
		{
			Name:      MeshRenderer{}.Name(),
			Prototype: MeshRenderer{},
			Schema: schema.Doc{Fields: map[string]schema.Field{
				"mesh":        {Kind: schema.String, Required: true},
				"material":    {Kind: schema.String},
				"castShadows": {Kind: schema.Boolean},
				"enabled":     {Kind: schema.Boolean},
			}},
		},
		{
			Name:         RigidBody{}.Name(),
			Prototype:    RigidBody{},
			Incompatible: []string{Instanced{}.Name()},
			Schema: schema.Doc{Fields: map[string]schema.Field{
				"mass":     {Kind: schema.Number, Required: true, Min: schema.Bound(0)},
				"bodyType": {Kind: schema.String, Enum: []any{"dynamic", "kinematic", "static"}},
				"friction": {Kind: schema.Number, Min: schema.Bound(0)},
			}},
		},
		{
			Name:      Camera{}.Name(),
			Prototype: Camera{},
			Schema: schema.Doc{Fields: map[string]schema.Field{
				"fov":        {Kind: schema.Number, Min: schema.Bound(1), Max: schema.Bound(179)},
				"near":       {Kind: schema.Number, Min: schema.Bound(0)},
				"far":        {Kind: schema.Number, Min: schema.Bound(0)},
				"projection": {Kind: schema.String, Enum: []any{"perspective", "orthographic"}},
			}},
		},
		{
			Name:      Light{}.Name(),
			Prototype: Light{},
			Schema: schema.Doc{Fields: map[string]schema.Field{
				"lightType":  {Kind: schema.String, Required: true, Enum: []any{"directional", "point", "spot", "ambient"}},
				"color":      {Kind: schema.Array},
				"intensity":  {Kind: schema.Number, Min: schema.Bound(0)},
				"castShadow": {Kind: schema.Boolean},
			}},
		},
		{
			Name:         Instanced{}.Name(),
			Prototype:    Instanced{},
			Incompatible: []string{RigidBody{}.Name()},
			Schema: schema.Doc{Fields: map[string]schema.Field{
				"count": {Kind: schema.Integer, Required: true, Min: schema.Bound(1)},
			}},
		},
		{
			Name:      PrefabInstance{}.Name(),
			Prototype: PrefabInstance{},
			Schema: schema.Doc{Fields: map[string]schema.Field{
				"prefabId":      {Kind: schema.String, Required: true},
				"version":       {Kind: schema.Integer, Min: schema.Bound(1)},
				"instanceUuid":  {Kind: schema.String},
				"overridePatch": {Kind: schema.Object},
			}},
		},
	}
}

// Register adds the whole catalog to the registry.
func Register(registry *state.ComponentRegistry) error {
	for _, spec := range Specs() {
		if err := registry.RegisterSpec(spec); err != nil {
			return err
		}
	}
	return nil
}
