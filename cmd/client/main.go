// Package main is the interactive storefront cart shell. It drives the
// cart controller against the local store and the remote cart resource,
// and handles sign-in, sign-out, and the login-time cart merge.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/avolkov/cartsync/internal/client/cart"
	"github.com/avolkov/cartsync/internal/client/gateway"
	"github.com/avolkov/cartsync/internal/client/session"
	"github.com/avolkov/cartsync/internal/client/store"
	"github.com/avolkov/cartsync/internal/logger"
	"github.com/avolkov/cartsync/internal/models"
)

var (
	version   string
	buildDate string
)

// promptForItem reads the product fields for an "add" command.
func promptForItem(scanner *bufio.Scanner) (productID, title string, price float64, qty, cap int, err error) {
	fmt.Print("Product ID: ")
	scanner.Scan()
	productID = strings.TrimSpace(scanner.Text())
	if productID == "" {
		return "", "", 0, 0, 0, errors.New("product ID is required")
	}

	fmt.Print("Title: ")
	scanner.Scan()
	title = strings.TrimSpace(scanner.Text())

	fmt.Print("Unit price: ")
	scanner.Scan()
	price, err = strconv.ParseFloat(strings.TrimSpace(scanner.Text()), 64)
	if err != nil {
		return "", "", 0, 0, 0, fmt.Errorf("invalid price: %w", err)
	}

	fmt.Print("Quantity [1]: ")
	scanner.Scan()
	qtyStr := strings.TrimSpace(scanner.Text())
	qty = 1
	if qtyStr != "" {
		qty, err = strconv.Atoi(qtyStr)
		if err != nil {
			return "", "", 0, 0, 0, fmt.Errorf("invalid quantity: %w", err)
		}
	}

	fmt.Print("Stock cap [none]: ")
	scanner.Scan()
	capStr := strings.TrimSpace(scanner.Text())
	if capStr != "" {
		cap, err = strconv.Atoi(capStr)
		if err != nil {
			return "", "", 0, 0, 0, fmt.Errorf("invalid stock cap: %w", err)
		}
	}
	return productID, title, price, qty, cap, nil
}

// promptCredentials reads a login and password pair.
func promptCredentials(scanner *bufio.Scanner) (login, password string) {
	fmt.Print("Login: ")
	scanner.Scan()
	login = strings.TrimSpace(scanner.Text())
	fmt.Print("Password: ")
	scanner.Scan()
	password = strings.TrimSpace(scanner.Text())
	return login, password
}

func printCart(ctrl *cart.Controller) {
	items := ctrl.Items()
	if len(items) == 0 {
		fmt.Println("Your cart is empty.")
		return
	}
	for _, item := range items {
		fmt.Printf("%s  %q  x%d  @ %.2f\n", item.ProductID, item.Title, item.Quantity, item.UnitPrice)
	}
	fmt.Printf("Total: %.2f\n", items.Total())
}

// repl runs the interactive shell loop, accepting commands to manage the cart.
func repl(ctrl *cart.Controller, sess *session.Session, gw *gateway.Gateway) {
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("cart> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, add, remove <id>, set <id> <qty>, list, clear, register, login, logout, exit")
		case "add":
			productID, title, price, qty, cap, err := promptForItem(scanner)
			if err != nil {
				fmt.Println(err)
				continue
			}
			item := models.LineItem{ProductID: productID, Title: title, UnitPrice: price, StockCap: cap}
			if err := ctrl.AddItem(item, qty); err != nil {
				fmt.Println(err)
			}
		case "remove":
			if len(args) < 2 {
				fmt.Println("Usage: remove <product-id>")
				continue
			}
			ctrl.RemoveItem(args[1])
		case "set":
			if len(args) < 3 {
				fmt.Println("Usage: set <product-id> <qty>")
				continue
			}
			qty, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Println("invalid quantity:", args[2])
				continue
			}
			if err := ctrl.SetQuantity(args[1], qty); err != nil {
				fmt.Println(err)
			}
		case "list":
			printCart(ctrl)
		case "clear":
			ctrl.Clear()
		case "register":
			login, password := promptCredentials(scanner)
			if err := gw.Register(ctx, login, password); err != nil {
				fmt.Println("registration failed:", err)
				continue
			}
			fmt.Println("Registered. Use 'login' to sign in.")
		case "login":
			if sess.Authenticated() {
				fmt.Println("Already signed in as", sess.Login())
				continue
			}
			login, password := promptCredentials(scanner)
			token, err := gw.Login(ctx, login, password)
			if err != nil {
				fmt.Println("login failed:", err)
				continue
			}
			if err := sess.SetAuthenticated(login, token); err != nil {
				fmt.Println("failed to store session:", err)
				continue
			}
			fmt.Println("Signed in as", login)
		case "logout":
			ctrl.Flush()
			if err := sess.SetAnonymous(); err != nil {
				fmt.Println("failed to clear session:", err)
			}
			fmt.Println("Signed out")
		case "exit":
			ctrl.Close()
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// main parses command-line flags and starts the cart shell.
func main() {
	var (
		baseURL  string
		stateDir string
		showVer  bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&stateDir, "state", ".", "directory for local cart and session files")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Cart Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	zlog := logger.New()
	if err := zlog.Init("Warn"); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Log.Sync() }()

	sess := session.New(stateDir)
	local := store.NewLocal(stateDir)
	gw := gateway.New(nil, baseURL, sess.Token)

	ctrl := cart.NewController(local, gw, sess.Authenticated, zlog.Log, func(err error) {
		if errors.Is(err, gateway.ErrUnauthorized) {
			fmt.Println("\nSession expired, signing out.")
			_ = sess.SetAnonymous()
			return
		}
		fmt.Println("\nCart sync failed, will retry on your next change:", err)
	})

	// Sign-in merges the guest cart into the server cart; sign-out
	// falls back to whatever the local store holds.
	sess.OnLogin(func(string) { ctrl.Reconcile(context.Background()) })
	sess.OnLogout(func() { ctrl.ResetFromLocal() })

	repl(ctrl, sess, gw)
}
