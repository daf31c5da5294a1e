// 时钟列表运维工具：交互式增删查时钟城市，并检查名称能否在地图上定位
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"clock-map/internal/clocklist"
	"clock-map/internal/geodata"
	"clock-map/internal/migrate"
	"clock-map/internal/pins"
	"clock-map/internal/utils"
)

type cli struct {
	st  *clocklist.Store
	res *pins.Resolver
	out io.Writer
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  add <name> [| label]")
	fmt.Fprintln(w, "  del <name>")
	fmt.Fprintln(w, "  list")
	fmt.Fprintln(w, "  seed")
	fmt.Fprintln(w, "  resolve <name>")
	fmt.Fprintln(w, "  help")
	fmt.Fprintln(w, "  exit")
}

func prompt(r *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	s, _ := r.ReadString('\n')
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// exec：执行一行命令，返回 false 表示退出
// 约束：命令名之后的整段文本即城市名（城市名可含空格），标签以 " | " 分隔
func (c *cli) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "exit", "quit":
		return false
	case "help":
		printHelp(c.out)
	case "add", "set":
		name, label, _ := strings.Cut(arg, "|")
		name, label = strings.TrimSpace(name), strings.TrimSpace(label)
		e, err := c.st.Add(ctx, name, label)
		if errors.Is(err, clocklist.ErrEmptyName) {
			fmt.Fprintln(c.out, "usage: add <name> [| label]")
			return true
		}
		if err != nil {
			fmt.Fprintln(c.out, "error:", err)
			return true
		}
		if _, ok := c.res.ResolveOne(e.Name); !ok {
			fmt.Fprintf(c.out, "ok (warning: %q has no map pin)\n", e.Name)
			return true
		}
		fmt.Fprintln(c.out, "ok")
	case "del", "rm":
		if arg == "" {
			fmt.Fprintln(c.out, "usage: del <name>")
			return true
		}
		switch err := c.st.Remove(ctx, arg); {
		case errors.Is(err, clocklist.ErrNotFound):
			fmt.Fprintln(c.out, "not found")
		case err != nil:
			fmt.Fprintln(c.out, "error:", err)
		default:
			fmt.Fprintln(c.out, "ok")
		}
	case "list", "ls":
		es, err := c.st.List(ctx)
		if err != nil {
			fmt.Fprintln(c.out, "error:", err)
			return true
		}
		if len(es) == 0 {
			fmt.Fprintln(c.out, "none")
		}
		for _, e := range es {
			fmt.Fprintf(c.out, "%d. %s (%s) %s\n", e.Position, e.Name, e.Label, c.describe(e.Name))
		}
	case "seed":
		n, err := c.st.SeedDefaults(ctx)
		if err != nil {
			fmt.Fprintln(c.out, "error:", err)
			return true
		}
		fmt.Fprintf(c.out, "seeded %d\n", n)
	case "resolve":
		fmt.Fprintln(c.out, c.describe(arg))
	default:
		fmt.Fprintln(c.out, "unknown command")
	}
	return true
}

func (c *cli) describe(name string) string {
	r := c.res.Resolve(name)
	if !r.OK() {
		return "-> unresolved"
	}
	return fmt.Sprintf("-> %s %s (%.4f, %.4f)", r.Outcome, r.Country, r.Coordinate.Lat, r.Coordinate.Lng)
}

func main() {
	var envFile string
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--env" && i+1 < len(os.Args) {
			envFile = os.Args[i+1]
			i++
		} else if strings.HasSuffix(os.Args[i], ".env") {
			envFile = os.Args[i]
		}
	}
	var db *sql.DB
	var err error
	if envFile != "" {
		utils.LoadEnvFiles(envFile)
		db, err = utils.OpenPostgresFromEnv()
	} else {
		r := bufio.NewReader(os.Stdin)
		fmt.Println("输入数据库连接参数，回车使用默认值")
		for _, kv := range [][2]string{{"PG_HOST", "127.0.0.1"}, {"PG_PORT", "5432"}, {"PG_USER", "postgres"}, {"PG_PASSWORD", ""}, {"PG_DB", "clockmap"}, {"PG_SSLMODE", "disable"}} {
			_ = os.Setenv(kv[0], prompt(r, kv[0], utils.EnvString(kv[0], kv[1])))
		}
		db, err = utils.OpenPostgresFromEnv()
	}
	if err != nil {
		fmt.Println("db error:", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		fmt.Println("schema error:", err)
		os.Exit(1)
	}
	ds, err := geodata.Load(utils.EnvString("GEODATA_DIR", ""))
	if err != nil {
		fmt.Println("geodata error:", err)
		os.Exit(1)
	}
	c := &cli{st: clocklist.AttachDB(db), res: pins.NewResolverFromDataset(ds), out: os.Stdout}
	fmt.Println("clock list cli ready")
	printHelp(c.out)
	in := bufio.NewScanner(os.Stdin)
	ctx := context.Background()
	for {
		fmt.Print("> ")
		if !in.Scan() || !c.exec(ctx, in.Text()) {
			return
		}
	}
}
