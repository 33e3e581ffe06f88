// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handler

import (
	"fmt"

	"github.com/holomush/blockguard/internal/protection"
	"github.com/holomush/blockguard/pkg/event"
)

// Player-facing messages use the host's §-prefixed color codes verbatim.

func protectedNotice(blockType string) string {
	return fmt.Sprintf("§c§lProtected! §r§7%s cannot be mined.", protection.BlockName(blockType))
}

func brokenMilestone(n uint64) string {
	return fmt.Sprintf("§e%d §7blocks broken", n)
}

func placedMilestone(n uint64) string {
	return fmt.Sprintf("§e%d §7blocks placed", n)
}

func welcomeBack(broken, placed uint64) string {
	return fmt.Sprintf("§7Welcome back! §e%d §7broken, §e%d §7placed", broken, placed)
}

// Host log lines.

func deniedLog(p event.Player, b event.Block) string {
	return fmt.Sprintf("%s tried to break protected block %s at %s", p.Name, b.Type, b.Position)
}

func brokeLog(p event.Player, b event.Block) string {
	return fmt.Sprintf("%s broke %s at %s", p.Name, b.Type, b.Position)
}

func placedLog(p event.Player, b event.Block) string {
	return fmt.Sprintf("%s placed %s at %s", p.Name, b.Type, b.Position)
}

func joinedLog(p event.Player) string {
	return p.Name + " joined"
}
