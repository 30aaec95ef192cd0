package app

import "fmt"

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はHTTP APIサーバとして起動する。
	CommandServe Command = "serve"
	// CommandWorker は定期クロールワーカーとして起動する。
	CommandWorker Command = "worker"
	// CommandMigrate はマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行して終了する。
	// コンテナのHEALTHCHECK命令からの利用を想定している。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数から起動モードを解決する。
// 引数なしの場合はserveとして扱う。
func ParseCommand(args []string) (Command, error) {
	if len(args) < 2 {
		return CommandServe, nil
	}
	switch Command(args[1]) {
	case CommandServe, CommandWorker, CommandMigrate, CommandHealthcheck:
		return Command(args[1]), nil
	default:
		return "", fmt.Errorf("未知のコマンドです: %s (serve|worker|migrate|healthcheck)", args[1])
	}
}
