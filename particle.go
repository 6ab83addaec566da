package aspen

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/aspen3d/aspen/vmath"
)

// Range is a closed interval sampled uniformly.
type Range struct {
	Min, Max float32
}

// Random returns a random value in [Min, Max].
func (r Range) Random() float32 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rand.Float32()*(r.Max-r.Min)
}

// particle is one slot in the emitter's pool.
type particle struct {
	pos        vmath.Vector3
	vel        vmath.Vector3
	life       float32 // seconds left
	maxLife    float32 // lifetime at spawn, for interpolation
	startScale float32
	endScale   float32
	scale      float32
}

// EmitterConfig sets the spawn and motion parameters of a ParticleEmitter.
type EmitterConfig struct {
	// MaxParticles caps the pool; spawns past the cap are dropped.
	// Defaults to 128.
	MaxParticles int
	// EmitRate is how many particles spawn per second.
	EmitRate float64
	// Lifetime samples each particle's time to live, in seconds.
	Lifetime Range
	// Speed samples the initial velocity magnitude in units per second.
	Speed Range
	// Direction is the mean emission direction. Zero defaults to +Y.
	Direction vmath.Vector3
	// Spread is the half-angle in radians of the emission cone around
	// Direction. Zero emits exactly along Direction; Pi fills the sphere.
	Spread float32
	// StartScale is the range of quad edge lengths at birth, interpolated to
	// EndScale over each particle's lifetime.
	StartScale Range
	// EndScale is the range of quad edge lengths at death.
	EndScale Range
	// Gravity is a constant acceleration added to every particle's velocity.
	Gravity vmath.Vector3
	// WorldSpace pins particles at their spawn position in the world instead
	// of carrying them along with the emitter mesh.
	WorldSpace bool
}

// ParticleEmitter runs a pooled CPU particle simulation behind a mesh.
// Each Update rewrites the emitter mesh's geometry as one +Z-facing quad per
// alive particle; the mesh renders and parents like any other, and survives
// bridge commits as a manual child.
type ParticleEmitter struct {
	mesh      *Mesh
	config    EmitterConfig
	particles []particle
	alive     int
	spawnDebt float64
	active    bool
}

// NewParticleEmitter creates an emitter and the mesh it renders through. The
// mesh starts with an empty geometry and a double-sided white material;
// restyle it through Mesh().Material.
func NewParticleEmitter(name string, cfg EmitterConfig) (*ParticleEmitter, *Mesh) {
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = 128
	}
	if cfg.Direction == (vmath.Vector3{}) {
		cfg.Direction = vmath.V3(0, 1, 0)
	} else {
		cfg.Direction = cfg.Direction.Normal()
	}

	geo := newGeometry("geometry")
	geo.finalize()
	mat := NewBasicMaterial(name)
	mat.DoubleSide = true
	mesh := NewMesh(name, geo, mat)

	e := &ParticleEmitter{
		mesh:      mesh,
		config:    cfg,
		particles: make([]particle, cfg.MaxParticles),
	}
	return e, mesh
}

// Mesh returns the mesh the emitter renders through.
func (e *ParticleEmitter) Mesh() *Mesh { return e.mesh }

// Start turns emission on.
func (e *ParticleEmitter) Start() { e.active = true }

// Stop turns emission off. Particles already alive play out their lifetimes.
func (e *ParticleEmitter) Stop() { e.active = false }

// Reset stops emitting, kills all alive particles, and clears the mesh.
func (e *ParticleEmitter) Reset() {
	e.active = false
	e.alive = 0
	e.spawnDebt = 0
	e.rebuild(vmath.Matrix4{}, false)
}

// IsActive reports whether emission is on.
func (e *ParticleEmitter) IsActive() bool { return e.active }

// AliveCount returns how many particles are alive.
func (e *ParticleEmitter) AliveCount() int { return e.alive }

// Config exposes the emitter's config for tuning between updates.
func (e *ParticleEmitter) Config() *EmitterConfig { return &e.config }

// Update advances the simulation by dt seconds and rebuilds the mesh
// geometry. Call it each frame, typically from a Subscribe callback. With
// WorldSpace set, the spawn point is the mesh's world position from the most
// recent traversal.
func (e *ParticleEmitter) Update(dt float64) {
	fdt := float32(dt)
	grav := e.config.Gravity.MulScalar(fdt)

	var origin vmath.Vector3
	var invWorld vmath.Matrix4
	haveInv := false
	if e.config.WorldSpace {
		w := e.mesh.WorldMatrix()
		origin = vmath.Vector3{}.MulMatrix4(w)
		invWorld, haveInv = w.Inverse()
	}

	// Age the pool. Dead slots are refilled from the tail so the alive
	// range stays packed.
	for i := 0; i < e.alive; {
		p := &e.particles[i]
		p.life -= fdt
		if p.life <= 0 {
			e.alive--
			e.particles[i] = e.particles[e.alive]
			continue
		}

		p.vel = p.vel.Add(grav)
		p.pos = p.pos.Add(p.vel.MulScalar(fdt))

		t := 1 - p.life/p.maxLife
		p.scale = p.startScale + (p.endScale-p.startScale)*t

		i++
	}

	// Pay down the spawn debt. A full pool still drains it; dropped spawns
	// are gone, not deferred.
	if e.active && e.config.EmitRate > 0 {
		e.spawnDebt += e.config.EmitRate * dt
		for ; e.spawnDebt >= 1; e.spawnDebt-- {
			if e.alive < len(e.particles) {
				e.spawn(origin)
			}
		}
	}

	e.rebuild(invWorld, haveInv)
}

// spawn fills the slot at e.alive and widens the alive range.
func (e *ParticleEmitter) spawn(origin vmath.Vector3) {
	p := &e.particles[e.alive]

	dir := coneDirection(e.config.Direction, e.config.Spread)
	p.vel = dir.MulScalar(e.config.Speed.Random())
	p.pos = origin

	p.life = e.config.Lifetime.Random()
	if p.life <= 0 {
		p.life = 1
	}
	p.maxLife = p.life

	p.startScale = e.config.StartScale.Random()
	p.endScale = e.config.EndScale.Random()
	p.scale = p.startScale

	e.alive++
}

// rebuild rewrites the mesh geometry as one quad per alive particle,
// reusing the buffers at their high-water mark. In world-space mode the
// stored world positions are mapped back through the mesh's inverse world
// matrix.
func (e *ParticleEmitter) rebuild(invWorld vmath.Matrix4, haveInv bool) {
	g := e.mesh.Geometry
	nv := e.alive * 4
	ni := e.alive * 6

	if cap(g.Positions) < nv {
		g.Positions = make([]vmath.Vector3, nv)
		g.Normals = make([]vmath.Vector3, nv)
		g.UVs = make([]vmath.Vector2, nv)
	}
	g.Positions = g.Positions[:nv]
	g.Normals = g.Normals[:nv]
	g.UVs = g.UVs[:nv]
	if cap(g.Indices) < ni {
		g.Indices = make([]uint32, ni)
	}
	g.Indices = g.Indices[:ni]

	normal := vmath.V3(0, 0, 1)
	for i := 0; i < e.alive; i++ {
		p := &e.particles[i]
		c := p.pos
		if haveInv {
			c = c.MulMatrix4(invWorld)
		}
		h := p.scale / 2

		vi := i * 4
		g.Positions[vi+0] = vmath.V3(c.X-h, c.Y+h, c.Z)
		g.Positions[vi+1] = vmath.V3(c.X+h, c.Y+h, c.Z)
		g.Positions[vi+2] = vmath.V3(c.X-h, c.Y-h, c.Z)
		g.Positions[vi+3] = vmath.V3(c.X+h, c.Y-h, c.Z)
		g.Normals[vi+0] = normal
		g.Normals[vi+1] = normal
		g.Normals[vi+2] = normal
		g.Normals[vi+3] = normal
		g.UVs[vi+0] = vmath.V2(0, 1)
		g.UVs[vi+1] = vmath.V2(1, 1)
		g.UVs[vi+2] = vmath.V2(0, 0)
		g.UVs[vi+3] = vmath.V2(1, 0)

		base := uint32(vi)
		ii := i * 6
		g.Indices[ii+0] = base
		g.Indices[ii+1] = base + 2
		g.Indices[ii+2] = base + 1
		g.Indices[ii+3] = base + 2
		g.Indices[ii+4] = base + 3
		g.Indices[ii+5] = base + 1
	}
	g.finalize()
}

// coneDirection returns a random unit vector within the cone of the given
// half-angle around dir. dir must be unit length.
func coneDirection(dir vmath.Vector3, spread float32) vmath.Vector3 {
	if spread <= 0 {
		return dir
	}
	cosT := 1 - rand.Float32()*(1-math32.Cos(spread))
	sinT := math32.Sqrt(1 - cosT*cosT)
	phi := rand.Float32() * 2 * math32.Pi

	// Orthonormal basis with dir as the cone axis.
	up := vmath.V3(0, 1, 0)
	if math32.Abs(dir.Y) > 0.99 {
		up = vmath.V3(1, 0, 0)
	}
	tangent := up.Cross(dir).Normal()
	bitangent := dir.Cross(tangent)

	return tangent.MulScalar(sinT * math32.Cos(phi)).
		Add(bitangent.MulScalar(sinT * math32.Sin(phi))).
		Add(dir.MulScalar(cosT))
}
