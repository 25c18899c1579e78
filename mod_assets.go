package armviz

import (
	"context"
	"sync"

	"github.com/gekko3d/armviz/urdf"
	"github.com/google/uuid"
)

type AssetId string

type AssetState int

const (
	AssetLoading AssetState = iota
	AssetReady
	AssetFailed
)

func (s AssetState) String() string {
	switch s {
	case AssetReady:
		return "ready"
	case AssetFailed:
		return "failed"
	default:
		return "loading"
	}
}

// RobotAsset is a robot description loaded from disk.
type RobotAsset struct {
	Id          AssetId
	Path        string
	State       AssetState
	Description *urdf.Robot
	Err         error
}

type loadResult struct {
	id   AssetId
	desc *urdf.Robot
	err  error
}

// AssetServer loads robot descriptions on background goroutines. Finished
// loads are only visible after Poll, which is called from the frame loop.
type AssetServer struct {
	mu     sync.Mutex
	robots map[AssetId]*RobotAsset
	done   chan loadResult
	load   func(ctx context.Context, path string) (*urdf.Robot, error)
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[AssetServer](app); ok {
		return
	}
	app.addResources(NewAssetServer())
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		robots: make(map[AssetId]*RobotAsset),
		done:   make(chan loadResult, 16),
		load:   urdf.Load,
	}
}

// LoadRobot starts loading the description at path and returns its id.
func (server *AssetServer) LoadRobot(ctx context.Context, path string) AssetId {
	id := makeAssetId()

	server.mu.Lock()
	server.robots[id] = &RobotAsset{Id: id, Path: path, State: AssetLoading}
	server.mu.Unlock()

	go func() {
		desc, err := server.load(ctx, path)
		server.done <- loadResult{id: id, desc: desc, err: err}
	}()
	return id
}

// AddRobot registers an already parsed description.
func (server *AssetServer) AddRobot(desc *urdf.Robot) AssetId {
	id := makeAssetId()
	server.mu.Lock()
	server.robots[id] = &RobotAsset{Id: id, State: AssetReady, Description: desc}
	server.mu.Unlock()
	return id
}

// Poll adopts finished loads without blocking and returns their ids.
func (server *AssetServer) Poll() []AssetId {
	var finished []AssetId
	for {
		select {
		case res := <-server.done:
			server.mu.Lock()
			if a, ok := server.robots[res.id]; ok {
				a.Description, a.Err = res.desc, res.err
				a.State = AssetReady
				if res.err != nil {
					a.State = AssetFailed
				}
			}
			server.mu.Unlock()
			finished = append(finished, res.id)
		default:
			return finished
		}
	}
}

func (server *AssetServer) Robot(id AssetId) (RobotAsset, bool) {
	server.mu.Lock()
	defer server.mu.Unlock()
	a, ok := server.robots[id]
	if !ok {
		return RobotAsset{}, false
	}
	return *a, true
}

// Release forgets an asset. A load still in flight is discarded when it
// finishes.
func (server *AssetServer) Release(id AssetId) {
	server.mu.Lock()
	delete(server.robots, id)
	server.mu.Unlock()
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
